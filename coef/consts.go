// Package coef implements the coefficient buffer controller of a block-based
// image decompressor: the stage between entropy decoding and the inverse DCT.
package coef

// DecodeStatus indicates the result of one step of the controller
type DecodeStatus int

const (
	// Suspended means the entropy decoder ran out of input. Nothing partial
	// was committed; call again after supplying more data.
	Suspended DecodeStatus = iota
	// RowCompleted means a row-group was finished and more remain.
	RowCompleted
	// ScanCompleted means the last row-group of the pass was finished.
	ScanCompleted
	// ReachedSOS is returned by Session.ConsumeInput after a scan header.
	ReachedSOS
	// ReachedEOI is returned by Session.ConsumeInput at the end of the image.
	ReachedEOI
)

func (s DecodeStatus) String() string {
	switch s {
	case Suspended:
		return "Suspended"
	case RowCompleted:
		return "RowCompleted"
	case ScanCompleted:
		return "ScanCompleted"
	case ReachedSOS:
		return "ReachedSOS"
	case ReachedEOI:
		return "ReachedEOI"
	default:
		return "DecodeStatus(?)"
	}
}

const (
	// DCTSize is the width and height of a coefficient block
	DCTSize = 8

	// DCTSize2 is the number of coefficients in a block
	DCTSize2 = 64

	// MaxComponents is the maximum number of color components
	MaxComponents = 4

	// MaxCompsInScan is the maximum number of components in one scan
	MaxCompsInScan = 4

	// MaxSampFactor is the largest allowed sampling factor
	MaxSampFactor = 4

	// MaxBlocksInMCU is the largest number of blocks in one unit
	MaxBlocksInMCU = 10

	// SavedCoefs is how many precision ledger entries smoothing latches
	SavedCoefs = 6

	// MaxSuccessiveApprox is the largest allowed Al value
	MaxSuccessiveApprox = 13
)

// Natural-order positions of the first five zigzag AC coefficients
const (
	Q01Pos = 1
	Q10Pos = 8
	Q20Pos = 16
	Q11Pos = 9
	Q02Pos = 2
)

// ZigzagToNatural maps zigzag order to natural (row-major) order
var ZigzagToNatural = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10, 17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34, 27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36, 29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46, 53, 60, 61, 54, 47, 55, 62, 63,
}

// NaturalToZigzag maps natural order to zigzag order
var NaturalToZigzag = [64]uint8{
	0, 1, 5, 6, 14, 15, 27, 28, 2, 4, 7, 13, 16, 26, 29, 42,
	3, 8, 12, 17, 25, 30, 41, 43, 9, 11, 18, 24, 31, 40, 44, 53,
	10, 19, 23, 32, 39, 45, 52, 54, 20, 22, 33, 38, 46, 51, 55, 60,
	21, 34, 37, 47, 50, 56, 59, 61, 35, 36, 48, 49, 57, 58, 62, 63,
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func roundUp(a, b int) int {
	return ceilDiv(a, b) * b
}
