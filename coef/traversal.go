package coef

// UnitTraversalState keeps track of the input side's position while
// consuming a scan. The output side only needs its row-group index, which the
// session keeps next to this.
type UnitTraversalState struct {
	// RowGroup is the current row-group (iMCU row)
	RowGroup int

	// RowWithinGroup counts unit rows within the row-group
	RowWithinGroup int

	// Column counts units processed in the current unit row
	Column int

	// RowsPerGroup is the number of unit rows in the current row-group
	RowsPerGroup int
}

// startRowGroup resets the within-row-group counters for a new row-group.
// In an interleaved scan a unit row is a row-group. A non-interleaved scan
// has VSamp unit rows per row-group, but at the bottom of the image only
// what is left.
func (s *UnitTraversalState) startRowGroup(layout *ScanLayout, totalRowGroups int) {
	if layout.Interleaved() {
		s.RowsPerGroup = 1
	} else if s.RowGroup < totalRowGroups-1 {
		s.RowsPerGroup = layout.Components[0].Info.VSamp
	} else {
		s.RowsPerGroup = layout.Components[0].LastRowHeight
	}
	s.Column = 0
	s.RowWithinGroup = 0
}

// startPass rewinds to the first row-group of a scan
func (s *UnitTraversalState) startPass(layout *ScanLayout, totalRowGroups int) {
	s.RowGroup = 0
	s.startRowGroup(layout, totalRowGroups)
}

// suspendAt records the unit that could not be decoded so the next call
// resumes exactly there
func (s *UnitTraversalState) suspendAt(row, col int) {
	s.RowWithinGroup = row
	s.Column = col
}

// finishRowGroup advances to the next row-group. It returns false when the
// row-group just finished was the last one of the scan.
func (s *UnitTraversalState) finishRowGroup(layout *ScanLayout, totalRowGroups int) bool {
	s.RowGroup++
	if s.RowGroup < totalRowGroups {
		s.startRowGroup(layout, totalRowGroups)
		return true
	}
	return false
}
