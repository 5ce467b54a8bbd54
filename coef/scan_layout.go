package coef

// Scan describes one pass over the entropy-coded data
type Scan struct {
	// Components lists frame component indexes in scan order
	Components []int

	// Ss and Se are the spectral selection start and end (inclusive, zigzag)
	Ss, Se int

	// Ah and Al are the successive approximation high and low bits
	Ah, Al int
}

// IsDC reports whether the scan carries DC data
func (s *Scan) IsDC() bool {
	return s.Ss == 0
}

// ScanComponent is the unit geometry of one component within a scan
type ScanComponent struct {
	Info *ComponentInfo

	// MCUWidth and MCUHeight are the unit size in blocks
	MCUWidth  int
	MCUHeight int

	// MCUBlocks is MCUWidth * MCUHeight
	MCUBlocks int

	// MCUSampleWidth is the unit width in output samples
	MCUSampleWidth int

	// LastColWidth is the number of non-dummy blocks across the last unit column
	LastColWidth int

	// LastRowHeight is the number of non-dummy blocks down the last unit row
	LastRowHeight int
}

// ScanLayout is the unit geometry of a scan
type ScanLayout struct {
	Scan       *Scan
	Components []ScanComponent

	// MCUsPerRow is the number of units in one unit row
	MCUsPerRow int

	// MCURowsInScan is the number of unit rows in the scan
	MCURowsInScan int

	// BlocksInMCU is the total block count of one unit
	BlocksInMCU int
}

// Interleaved reports whether the scan has more than one component
func (l *ScanLayout) Interleaved() bool {
	return len(l.Components) > 1
}

// NewScanLayout validates a scan against the frame and derives its unit
// geometry. Single-component scans are non-interleaved: one block per unit.
func NewScanLayout(f *Frame, scan *Scan) (*ScanLayout, error) {
	if len(scan.Components) < 1 || len(scan.Components) > MaxCompsInScan {
		return nil, errorf(ErrCodeBadScan, "%d components in scan", len(scan.Components))
	}
	seen := make(map[int]bool, len(scan.Components))
	for _, ci := range scan.Components {
		if ci < 0 || ci >= len(f.Components) {
			return nil, errorf(ErrCodeBadScan, "unknown component %d", ci)
		}
		if seen[ci] {
			return nil, errorf(ErrCodeBadScan, "repeated component %d", ci)
		}
		seen[ci] = true
	}
	if err := validateScanParams(f, scan); err != nil {
		return nil, err
	}

	l := &ScanLayout{
		Scan:       scan,
		Components: make([]ScanComponent, len(scan.Components)),
	}

	if len(scan.Components) == 1 {
		c := f.Component(scan.Components[0])
		l.MCUsPerRow = c.WidthInBlocks
		l.MCURowsInScan = c.HeightInBlocks

		lastRow := c.HeightInBlocks % c.VSamp
		if lastRow == 0 {
			lastRow = c.VSamp
		}
		l.Components[0] = ScanComponent{
			Info:           c,
			MCUWidth:       1,
			MCUHeight:      1,
			MCUBlocks:      1,
			MCUSampleWidth: c.DCTScaledSize,
			LastColWidth:   1,
			LastRowHeight:  lastRow,
		}
		l.BlocksInMCU = 1
		return l, nil
	}

	l.MCUsPerRow = f.MCUsPerRow()
	l.MCURowsInScan = f.TotalRowGroups
	for i, ci := range scan.Components {
		c := f.Component(ci)
		sc := ScanComponent{
			Info:           c,
			MCUWidth:       c.HSamp,
			MCUHeight:      c.VSamp,
			MCUBlocks:      c.HSamp * c.VSamp,
			MCUSampleWidth: c.HSamp * c.DCTScaledSize,
		}
		sc.LastColWidth = c.WidthInBlocks % c.HSamp
		if sc.LastColWidth == 0 {
			sc.LastColWidth = c.HSamp
		}
		sc.LastRowHeight = c.HeightInBlocks % c.VSamp
		if sc.LastRowHeight == 0 {
			sc.LastRowHeight = c.VSamp
		}
		l.BlocksInMCU += sc.MCUBlocks
		if l.BlocksInMCU > MaxBlocksInMCU {
			return nil, errorf(ErrCodeBadMCUSize, "%d blocks in unit", l.BlocksInMCU)
		}
		l.Components[i] = sc
	}
	return l, nil
}

func validateScanParams(f *Frame, scan *Scan) error {
	if !f.Progressive {
		if scan.Ss != 0 || scan.Se != DCTSize2-1 || scan.Ah != 0 || scan.Al != 0 {
			return errorf(ErrCodeBadScan, "sequential scan Ss=%d Se=%d Ah=%d Al=%d",
				scan.Ss, scan.Se, scan.Ah, scan.Al)
		}
		return nil
	}

	bad := false
	if scan.Ss == 0 {
		if scan.Se != 0 {
			bad = true
		}
	} else {
		if scan.Se < scan.Ss || scan.Se > DCTSize2-1 {
			bad = true
		}
		if len(scan.Components) != 1 {
			bad = true
		}
	}
	if scan.Ah != 0 && scan.Al != scan.Ah-1 {
		bad = true
	}
	if scan.Al < 0 || scan.Al > MaxSuccessiveApprox {
		bad = true
	}
	if bad {
		return errorf(ErrCodeBadProgression, "Ss=%d Se=%d Ah=%d Al=%d", scan.Ss, scan.Se, scan.Ah, scan.Al)
	}
	return nil
}
