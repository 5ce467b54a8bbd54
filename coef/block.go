package coef

// Block holds 64 DCT coefficients in natural (row-major) order.
// Index 0 is the DC term.
type Block [DCTSize2]int16

// DC returns the DC coefficient
func (b *Block) DC() int16 {
	return b[0]
}

// SetDC sets the DC coefficient
func (b *Block) SetDC(value int16) {
	b[0] = value
}

// At returns the coefficient at row, col
func (b *Block) At(row, col int) int16 {
	return b[row*DCTSize+col]
}

// Zigzag returns the coefficient at zigzag index k
func (b *Block) Zigzag(k int) int16 {
	return b[ZigzagToNatural[k]]
}

// SetZigzag sets the coefficient at zigzag index k
func (b *Block) SetZigzag(k int, value int16) {
	b[ZigzagToNatural[k]] = value
}

// Reset zeroes every coefficient
func (b *Block) Reset() {
	*b = Block{}
}

// IsZero reports whether every coefficient is zero
func (b *Block) IsZero() bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ZigzagToNaturalBlock converts a zigzag-ordered block to natural order
func ZigzagToNaturalBlock(a [DCTSize2]int16) Block {
	var b Block
	for k, pos := range ZigzagToNatural {
		b[pos] = a[k]
	}
	return b
}
