package coef

// Fixed-point constants of the integer IDCT (scaled by 2^11)
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)
)

// IntegerIDCT dequantizes a block and runs a separable integer inverse DCT,
// writing level-shifted 8-bit samples. It supports scaled sizes 8 (full) and
// 1 (DC only).
type IntegerIDCT struct{}

// SupportsScaledSize reports whether blocks can be reconstructed at n×n
func (IntegerIDCT) SupportsScaledSize(n int) bool {
	return n == DCTSize || n == 1
}

// Transform reconstructs comp.DCTScaledSize rows of samples into out
func (IntegerIDCT) Transform(comp *ComponentInfo, coefs *Block, out [][]byte, outCol int) {
	qt := comp.QuantTable
	if comp.DCTScaledSize == 1 {
		dc := int64(coefs[0]) * int64(qt.Q(0))
		out[0][outCol] = clampSample(((dc + 4) >> 3) + 128)
		return
	}

	// 16-bit coefficients times 16-bit quantizers overflow int32 in the passes below
	var blk [DCTSize2]int64
	for i := range blk {
		blk[i] = int64(coefs[i]) * int64(qt.Q(i))
	}
	for i := 0; i < DCTSize2; i += DCTSize {
		rowIDCT(&blk, i)
	}
	for x := 0; x < DCTSize; x++ {
		colIDCT(&blk, x, out, outCol+x)
	}
}

type scaledSizeChecker interface {
	SupportsScaledSize(n int) bool
}

func supportsScaledSize(t InverseTransform, n int) bool {
	if c, ok := t.(scaledSizeChecker); ok {
		return c.SupportsScaledSize(n)
	}
	return n >= 1 && n <= 2*DCTSize
}

func clampSample(x int64) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

// rowIDCT transforms the row starting at offset in place
func rowIDCT(blk *[DCTSize2]int64, offset int) {
	b := blk[offset : offset+DCTSize]
	_ = b[7]

	x1 := b[4] << 11
	x2 := b[6]
	x3 := b[2]
	x4 := b[1]
	x5 := b[7]
	x6 := b[5]
	x7 := b[3]

	if (x1 | x2 | x3 | x4 | x5 | x6 | x7) == 0 {
		val := b[0] << 3
		for i := range b {
			b[i] = val
		}
		return
	}

	x0 := (b[0] << 11) + 128

	x8 := w7 * (x4 + x5)
	x4 = x8 + (w1-w7)*x4
	x5 = x8 - (w1+w7)*x5
	x8 = w3 * (x6 + x7)
	x6 = x8 - (w3-w5)*x6
	x7 = x8 - (w3+w5)*x7

	x8 = x0 + x1
	x0 -= x1
	x1 = w6 * (x3 + x2)
	x2 = x1 - (w2+w6)*x2
	x3 = x1 + (w2-w6)*x3

	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2

	x2 = (181*(x4+x5) + 128) >> 8
	x4 = (181*(x4-x5) + 128) >> 8

	b[0] = (x7 + x1) >> 8
	b[1] = (x3 + x2) >> 8
	b[2] = (x0 + x4) >> 8
	b[3] = (x8 + x6) >> 8
	b[4] = (x8 - x6) >> 8
	b[5] = (x0 - x4) >> 8
	b[6] = (x3 - x2) >> 8
	b[7] = (x7 - x1) >> 8
}

// colIDCT transforms column col and writes it to out[0..7][outCol]
func colIDCT(blk *[DCTSize2]int64, col int, out [][]byte, outCol int) {
	_ = out[7]

	x1 := blk[col+8*4] << 8
	x2 := blk[col+8*6]
	x3 := blk[col+8*2]
	x4 := blk[col+8*1]
	x5 := blk[col+8*7]
	x6 := blk[col+8*5]
	x7 := blk[col+8*3]

	if (x1 | x2 | x3 | x4 | x5 | x6 | x7) == 0 {
		v := clampSample(((blk[col] + 32) >> 6) + 128)
		for y := 0; y < DCTSize; y++ {
			out[y][outCol] = v
		}
		return
	}

	x0 := (blk[col] << 8) + 8192

	x8 := w7*(x4+x5) + 4
	x4 = (x8 + (w1-w7)*x4) >> 3
	x5 = (x8 - (w1+w7)*x5) >> 3
	x8 = w3*(x6+x7) + 4
	x6 = (x8 - (w3-w5)*x6) >> 3
	x7 = (x8 - (w3+w5)*x7) >> 3

	x8 = x0 + x1
	x0 -= x1
	x1 = w6*(x3+x2) + 4
	x2 = (x1 - (w2+w6)*x2) >> 3
	x3 = (x1 + (w2-w6)*x3) >> 3

	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2

	x2 = (181*(x4+x5) + 128) >> 8
	x4 = (181*(x4-x5) + 128) >> 8

	out[0][outCol] = clampSample(((x7 + x1) >> 14) + 128)
	out[1][outCol] = clampSample(((x3 + x2) >> 14) + 128)
	out[2][outCol] = clampSample(((x0 + x4) >> 14) + 128)
	out[3][outCol] = clampSample(((x8 + x6) >> 14) + 128)
	out[4][outCol] = clampSample(((x8 - x6) >> 14) + 128)
	out[5][outCol] = clampSample(((x0 - x4) >> 14) + 128)
	out[6][outCol] = clampSample(((x3 - x2) >> 14) + 128)
	out[7][outCol] = clampSample(((x7 - x1) >> 14) + 128)
}
