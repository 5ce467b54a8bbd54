package coef

// multiPass absorbs scans into the full-image block stores and transforms
// from them on output.
type multiPass struct{}

// consume decodes one row-group of the current scan into the block stores
func (multiPass) consume(s *Session) (DecodeStatus, error) {
	c := s.coef
	layout := s.layout
	cur := &s.cursor

	var buffers [MaxCompsInScan][][]Block
	for i := range layout.Components {
		comp := layout.Components[i].Info
		rows, err := c.wholeImage[comp.Index].AccessRows(cur.RowGroup*comp.VSamp, comp.VSamp, true)
		if err != nil {
			return Suspended, err
		}
		buffers[i] = rows
	}

	for yoffset := cur.RowWithinGroup; yoffset < cur.RowsPerGroup; yoffset++ {
		for col := cur.Column; col < layout.MCUsPerRow; col++ {
			blkn := 0
			for i := range layout.Components {
				sc := &layout.Components[i]
				startCol := col * sc.MCUWidth
				for yindex := 0; yindex < sc.MCUHeight; yindex++ {
					row := buffers[i][yindex+yoffset]
					for xindex := 0; xindex < sc.MCUWidth; xindex++ {
						c.mcuBuffer[blkn] = &row[startCol+xindex]
						blkn++
					}
				}
			}
			if !s.entropy.DecodeMCU(c.mcuBuffer[:blkn]) {
				cur.suspendAt(yoffset, col)
				return Suspended, nil
			}
		}
		cur.Column = 0
	}

	if cur.finishRowGroup(layout, s.frame.TotalRowGroups) {
		return RowCompleted, nil
	}
	s.finishInputPass()
	return ScanCompleted, nil
}

// forceInput consumes input until it is ahead of the output row-group, or
// returns false when the input suspends.
func forceInput(s *Session) (bool, error) {
	for s.inputScanNumber < s.outputScanNumber ||
		(s.inputScanNumber == s.outputScanNumber && s.cursor.RowGroup <= s.outputRowGroup) {
		st, err := s.ConsumeInput()
		if err != nil {
			return false, err
		}
		if st == Suspended {
			return false, nil
		}
		if st == ReachedEOI {
			break
		}
	}
	return true, nil
}

// decompress transforms one row-group of the block stores into out
func (multiPass) decompress(s *Session, out SampleImage) (DecodeStatus, error) {
	ok, err := forceInput(s)
	if err != nil || !ok {
		return Suspended, err
	}

	c := s.coef
	lastRowGroup := s.frame.TotalRowGroups - 1
	for ci := range s.frame.Components {
		comp := &s.frame.Components[ci]
		if !comp.Needed {
			continue
		}
		rows, err := c.wholeImage[ci].AccessRows(s.outputRowGroup*comp.VSamp, comp.VSamp, false)
		if err != nil {
			return Suspended, err
		}
		blockRows := comp.VSamp
		if s.outputRowGroup == lastRowGroup {
			blockRows = comp.HeightInBlocks % comp.VSamp
			if blockRows == 0 {
				blockRows = comp.VSamp
			}
		}
		outRows := out[ci]
		for br := 0; br < blockRows; br++ {
			row := rows[br]
			outCol := 0
			for bn := 0; bn < comp.WidthInBlocks; bn++ {
				s.transform.Transform(comp, &row[bn], outRows, outCol)
				outCol += comp.DCTScaledSize
			}
			outRows = outRows[comp.DCTScaledSize:]
		}
	}

	s.outputRowGroup++
	if s.outputRowGroup < s.frame.TotalRowGroups {
		return RowCompleted, nil
	}
	return ScanCompleted, nil
}
