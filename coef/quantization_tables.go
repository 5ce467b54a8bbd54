package coef

// QuantTable holds quantizer values in natural order
type QuantTable [DCTSize2]uint16

// NewQuantTableFromZigzag builds a natural-order table from zigzag-ordered values
func NewQuantTableFromZigzag(table [DCTSize2]uint16) *QuantTable {
	qt := &QuantTable{}
	for k, pos := range ZigzagToNatural {
		qt[pos] = table[k]
	}
	return qt
}

// Q returns the quantizer at a natural-order position
func (qt *QuantTable) Q(pos int) int32 {
	return int32(qt[pos])
}

// smoothingQuantizers holds the DC quantizer and the five AC quantizers that
// the block smoothing estimator divides by
type smoothingQuantizers struct {
	q00, q01, q10, q20, q11, q02 int64
}

// smoothingQuantizers returns the quantizers used by smoothing, and false if
// any of them is zero.
func (qt *QuantTable) smoothingQuantizers() (smoothingQuantizers, bool) {
	q := smoothingQuantizers{
		q00: int64(qt[0]),
		q01: int64(qt[Q01Pos]),
		q10: int64(qt[Q10Pos]),
		q20: int64(qt[Q20Pos]),
		q11: int64(qt[Q11Pos]),
		q02: int64(qt[Q02Pos]),
	}
	if q.q00 == 0 || q.q01 == 0 || q.q10 == 0 || q.q20 == 0 || q.q11 == 0 || q.q02 == 0 {
		return q, false
	}
	return q, true
}
