package coef

// ComponentInfo holds metadata about one color component. The controller only
// reads it.
type ComponentInfo struct {
	// Index is the position of the component in the frame
	Index int

	// ID is the component identifier from the stream
	ID int

	// HSamp is the horizontal sampling factor
	HSamp int

	// VSamp is the vertical sampling factor
	VSamp int

	// QuantTable is the quantization table used by this component
	QuantTable *QuantTable

	// WidthInBlocks is the block count horizontal (no padding to HSamp)
	WidthInBlocks int

	// HeightInBlocks is the block count vertical (no padding to VSamp)
	HeightInBlocks int

	// DCTScaledSize is the output size in samples of one block edge
	DCTScaledSize int

	// Needed marks components whose pixels are wanted this pass
	Needed bool
}

// Frame describes the image being decoded
type Frame struct {
	Width       int
	Height      int
	Progressive bool
	Components  []ComponentInfo

	// MaxHSamp and MaxVSamp are the largest sampling factors
	MaxHSamp int
	MaxVSamp int

	// TotalRowGroups is the number of row-groups (iMCU rows) in the image
	TotalRowGroups int
}

// NewFrame validates the component sampling factors and derives the block
// grid of every component. A zero DCTScaledSize defaults to 8, and every
// component starts out needed.
func NewFrame(width, height int, progressive bool, comps []ComponentInfo) (*Frame, error) {
	if width <= 0 || height <= 0 || width > 65500 || height > 65500 {
		return nil, errorf(ErrCodeBadImageSize, "image size %dx%d", width, height)
	}
	if len(comps) < 1 || len(comps) > MaxComponents {
		return nil, errorf(ErrCodeBadComponentCount, "%d components", len(comps))
	}

	f := &Frame{
		Width:       width,
		Height:      height,
		Progressive: progressive,
		Components:  make([]ComponentInfo, len(comps)),
		MaxHSamp:    1,
		MaxVSamp:    1,
	}
	copy(f.Components, comps)

	for i := range f.Components {
		c := &f.Components[i]
		if c.HSamp < 1 || c.HSamp > MaxSampFactor || c.VSamp < 1 || c.VSamp > MaxSampFactor {
			return nil, errorf(ErrCodeBadSampling, "component %d sampling %dx%d", i, c.HSamp, c.VSamp)
		}
		f.MaxHSamp = max(f.MaxHSamp, c.HSamp)
		f.MaxVSamp = max(f.MaxVSamp, c.VSamp)
	}

	for i := range f.Components {
		c := &f.Components[i]
		c.Index = i
		if c.DCTScaledSize == 0 {
			c.DCTScaledSize = DCTSize
		}
		c.WidthInBlocks = ceilDiv(width*c.HSamp, f.MaxHSamp*DCTSize)
		c.HeightInBlocks = ceilDiv(height*c.VSamp, f.MaxVSamp*DCTSize)
		c.Needed = true
	}

	f.TotalRowGroups = ceilDiv(height, f.MaxVSamp*DCTSize)
	return f, nil
}

// Component returns the component at index i
func (f *Frame) Component(i int) *ComponentInfo {
	return &f.Components[i]
}

// MCUsPerRow returns the number of units in a row of an interleaved scan
func (f *Frame) MCUsPerRow() int {
	return ceilDiv(f.Width, f.MaxHSamp*DCTSize)
}

// StoreWidth returns the block-store width of a component, padded to HSamp
func (c *ComponentInfo) StoreWidth() int {
	return roundUp(c.WidthInBlocks, c.HSamp)
}

// StoreHeight returns the block-store height of a component, padded to VSamp
func (c *ComponentInfo) StoreHeight() int {
	return roundUp(c.HeightInBlocks, c.VSamp)
}

// OutputRows returns the number of sample rows in one row-group of output
func (c *ComponentInfo) OutputRows() int {
	return c.VSamp * c.DCTScaledSize
}

// OutputWidth returns the number of samples in one output row
func (c *ComponentInfo) OutputWidth() int {
	return c.WidthInBlocks * c.DCTScaledSize
}
