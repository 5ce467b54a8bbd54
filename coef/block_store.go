package coef

// BlockArray is a 2-D array of coefficient blocks for one component
type BlockArray interface {
	// Cols returns the number of blocks horizontally
	Cols() int

	// Rows returns the number of block rows
	Rows() int

	// AccessRows returns count rows starting at start. The view stays valid
	// until the next AccessRows call on the same array.
	AccessRows(start, count int, writable bool) ([][]Block, error)
}

// Allocator hands out zero-filled block arrays
type Allocator interface {
	// RequestArray allocates an array for a component. rowsPerAccess is the
	// largest row count a single AccessRows call may ask for.
	RequestArray(component, widthInBlocks, heightInBlocks, rowsPerAccess int) (BlockArray, error)
}

// MemoryAllocator keeps every array fully resident
type MemoryAllocator struct{}

// RequestArray allocates a resident array
func (MemoryAllocator) RequestArray(component, widthInBlocks, heightInBlocks, rowsPerAccess int) (BlockArray, error) {
	if widthInBlocks <= 0 || heightInBlocks <= 0 || rowsPerAccess <= 0 {
		return nil, errorf(ErrCodeBadVirtualAccess, "component %d array %dx%d window %d",
			component, widthInBlocks, heightInBlocks, rowsPerAccess)
	}
	return NewMemoryArray(widthInBlocks, heightInBlocks, rowsPerAccess), nil
}

// MemoryArray stores coefficient blocks row by row in one slice
type MemoryArray struct {
	// blocks holds all the coefficient blocks
	blocks []Block

	// rows holds one subslice of blocks per block row
	rows [][]Block

	// cols is the number of blocks horizontally
	cols int

	// maxAccess is the largest row count one access may ask for
	maxAccess int
}

// NewMemoryArray creates a zero-filled array
func NewMemoryArray(width, height, maxAccess int) *MemoryArray {
	a := &MemoryArray{
		blocks:    make([]Block, width*height),
		rows:      make([][]Block, height),
		cols:      width,
		maxAccess: maxAccess,
	}
	for y := 0; y < height; y++ {
		a.rows[y] = a.blocks[y*width : (y+1)*width : (y+1)*width]
	}
	return a
}

// Cols returns the number of blocks horizontally
func (a *MemoryArray) Cols() int {
	return a.cols
}

// Rows returns the number of block rows
func (a *MemoryArray) Rows() int {
	return len(a.rows)
}

// AccessRows returns a view of rows [start, start+count)
func (a *MemoryArray) AccessRows(start, count int, writable bool) ([][]Block, error) {
	if err := checkAccess(start, count, len(a.rows), a.maxAccess); err != nil {
		return nil, err
	}
	return a.rows[start : start+count : start+count], nil
}

// BlockXY returns a pointer to the block at the given position
func (a *MemoryArray) BlockXY(x, y int) *Block {
	if y < 0 || y >= len(a.rows) || x < 0 || x >= a.cols {
		return nil
	}
	return &a.rows[y][x]
}

func checkAccess(start, count, rows, maxAccess int) error {
	if start < 0 || count <= 0 || start+count > rows || count > maxAccess {
		return errorf(ErrCodeBadVirtualAccess, "rows [%d,%d) of %d, window %d",
			start, start+count, rows, maxAccess)
	}
	return nil
}
