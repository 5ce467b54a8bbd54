package coef

// smoothingOK reports whether interblock smoothing can be applied to this
// output pass, and latches the precision ledger entries the estimator needs.
// Smoothing needs a progressive image, nonzero quantizers for the DC and the
// first five AC positions of every component, some DC data for every
// component, and at least one of those AC positions still imprecise.
func (c *controller) smoothingOK(s *Session) bool {
	f := s.frame
	if !f.Progressive || s.coefBits == nil {
		return false
	}
	if c.latch == nil {
		c.latch = make([][SavedCoefs]int, len(f.Components))
	}

	useful := false
	for ci := range f.Components {
		qt := f.Components[ci].QuantTable
		if qt == nil {
			return false
		}
		if _, ok := qt.smoothingQuantizers(); !ok {
			return false
		}
		bits := &s.coefBits[ci]
		if bits[0] < 0 {
			return false
		}
		for k := 0; k < SavedCoefs; k++ {
			c.latch[ci][k] = bits[k]
			if k > 0 && bits[k] != 0 {
				useful = true
			}
		}
	}
	return useful
}

type smoothedMultiPass struct{}

// decompress transforms one row-group, filling in missing low-frequency AC
// coefficients from the DC values of the 3x3 block neighborhood
func (smoothedMultiPass) decompress(s *Session, out SampleImage) (DecodeStatus, error) {
	// The next row-group of the output scan must be in too, unless this is a
	// DC scan, whose neighbors come from the current row-group only.
	for s.inputScanNumber <= s.outputScanNumber && !s.eoiReached {
		if s.inputScanNumber == s.outputScanNumber {
			delta := 0
			if s.layout.Scan.Ss == 0 {
				delta = 1
			}
			if s.cursor.RowGroup > s.outputRowGroup+delta {
				break
			}
		}
		st, err := s.ConsumeInput()
		if err != nil {
			return Suspended, err
		}
		if st == Suspended {
			return Suspended, nil
		}
	}

	c := s.coef
	lastRowGroup := s.frame.TotalRowGroups - 1
	for ci := range s.frame.Components {
		comp := &s.frame.Components[ci]
		if !comp.Needed {
			continue
		}

		var blockRows, accessRows int
		lastRow := false
		if s.outputRowGroup < lastRowGroup {
			blockRows = comp.VSamp
			accessRows = 2 * blockRows
		} else {
			blockRows = comp.HeightInBlocks % comp.VSamp
			if blockRows == 0 {
				blockRows = comp.VSamp
			}
			accessRows = blockRows
			lastRow = true
		}
		firstRow := false
		start := s.outputRowGroup * comp.VSamp
		offset := 0
		if s.outputRowGroup > 0 {
			accessRows += comp.VSamp
			start -= comp.VSamp
			offset = comp.VSamp
		} else {
			firstRow = true
		}
		rows, err := c.wholeImage[ci].AccessRows(start, accessRows, false)
		if err != nil {
			return Suspended, err
		}

		q, _ := comp.QuantTable.smoothingQuantizers()
		latch := &c.latch[ci]
		lastCol := comp.WidthInBlocks - 1
		outRows := out[ci]
		for br := 0; br < blockRows; br++ {
			cur := rows[offset+br]
			prev := cur
			if !firstRow || br > 0 {
				prev = rows[offset+br-1]
			}
			next := cur
			if !lastRow || br < blockRows-1 {
				next = rows[offset+br+1]
			}

			// dc is the 3x3 DC neighborhood, row-major, centered on dc[4]
			var dc [9]int64
			dc[0], dc[1], dc[2] = int64(prev[0][0]), int64(prev[0][0]), int64(prev[0][0])
			dc[3], dc[4], dc[5] = int64(cur[0][0]), int64(cur[0][0]), int64(cur[0][0])
			dc[6], dc[7], dc[8] = int64(next[0][0]), int64(next[0][0]), int64(next[0][0])

			outCol := 0
			for bn := 0; bn <= lastCol; bn++ {
				c.scratch = cur[bn]
				if bn < lastCol {
					dc[2] = int64(prev[bn+1][0])
					dc[5] = int64(cur[bn+1][0])
					dc[8] = int64(next[bn+1][0])
				}
				smoothBlock(&c.scratch, latch, &q, &dc)
				s.transform.Transform(comp, &c.scratch, outRows, outCol)

				dc[0], dc[1] = dc[1], dc[2]
				dc[3], dc[4] = dc[4], dc[5]
				dc[6], dc[7] = dc[7], dc[8]
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

// smoothBlock fills in the first five AC coefficients of ws where they are
// still zero and not known exactly. Coefficients that arrived nonzero are
// never changed.
func smoothBlock(ws *Block, latch *[SavedCoefs]int, q *smoothingQuantizers, dc *[9]int64) {
	if al := latch[1]; al != 0 && ws[Q01Pos] == 0 {
		num := 36 * q.q00 * (dc[3] - dc[5])
		ws[Q01Pos] = predictAC(num, q.q01, al)
	}
	if al := latch[2]; al != 0 && ws[Q10Pos] == 0 {
		num := 36 * q.q00 * (dc[1] - dc[7])
		ws[Q10Pos] = predictAC(num, q.q10, al)
	}
	if al := latch[3]; al != 0 && ws[Q20Pos] == 0 {
		num := 9 * q.q00 * (dc[1] + dc[7] - 2*dc[4])
		ws[Q20Pos] = predictAC(num, q.q20, al)
	}
	if al := latch[4]; al != 0 && ws[Q11Pos] == 0 {
		num := 5 * q.q00 * (dc[0] - dc[2] - dc[6] + dc[8])
		ws[Q11Pos] = predictAC(num, q.q11, al)
	}
	if al := latch[5]; al != 0 && ws[Q02Pos] == 0 {
		num := 9 * q.q00 * (dc[3] + dc[5] - 2*dc[4])
		ws[Q02Pos] = predictAC(num, q.q02, al)
	}
}

// predictAC divides num by 256*q rounding half away from zero, and keeps the
// magnitude below 1<<al so the prediction stays under the unknown low bits.
func predictAC(num, q int64, al int) int16 {
	neg := num < 0
	if neg {
		num = -num
	}
	pred := ((q << 7) + num) / (q << 8)
	if al > 0 && pred >= 1<<al {
		pred = 1<<al - 1
	}
	if neg {
		pred = -pred
	}
	return int16(pred)
}
