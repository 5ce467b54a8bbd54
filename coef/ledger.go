package coef

// PrecisionLedger records, per component and zigzag coefficient position, how
// many low-order bits are still unknown after the most recent scan. Zero means
// fully known; -1 means not yet touched.
type PrecisionLedger [][DCTSize2]int

func newPrecisionLedger(components int) PrecisionLedger {
	l := make(PrecisionLedger, components)
	for ci := range l {
		for k := range l[ci] {
			l[ci][k] = -1
		}
	}
	return l
}

// update records the precision a progressive scan leaves behind. Ah values
// that disagree with the ledger are warned about, not rejected.
func (l PrecisionLedger) update(s *Session, scan *Scan) {
	for _, ci := range scan.Components {
		bits := &l[ci]
		if !scan.IsDC() && bits[0] < 0 {
			s.warnf(ErrCodeBogusProgression, "component %d: AC scan before DC", ci)
		}
		for k := scan.Ss; k <= scan.Se; k++ {
			expected := max(bits[k], 0)
			if scan.Ah != expected {
				s.warnf(ErrCodeBogusProgression, "component %d coefficient %d: Ah=%d, expected %d",
					ci, k, scan.Ah, expected)
			}
			bits[k] = scan.Al
		}
	}
}

// Clone returns a copy of the ledger
func (l PrecisionLedger) Clone() PrecisionLedger {
	if l == nil {
		return nil
	}
	out := make(PrecisionLedger, len(l))
	copy(out, l)
	return out
}
