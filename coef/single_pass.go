package coef

// singlePass decodes each unit into the workspace and transforms it straight
// into the output row-group. Input and output advance together.
type singlePass struct{}

// consume never makes progress by itself: in single-pass mode the input side
// only moves while an output row-group is being produced.
func (singlePass) consume(s *Session) (DecodeStatus, error) {
	return Suspended, nil
}

func (singlePass) decompress(s *Session, out SampleImage) (DecodeStatus, error) {
	c := s.coef
	layout := s.layout
	cur := &s.cursor
	lastMCUCol := layout.MCUsPerRow - 1
	lastRowGroup := s.frame.TotalRowGroups - 1

	for yoffset := cur.RowWithinGroup; yoffset < cur.RowsPerGroup; yoffset++ {
		for col := cur.Column; col <= lastMCUCol; col++ {
			blocks := c.mcuBuffer[:layout.BlocksInMCU]
			for _, b := range blocks {
				b.Reset()
			}
			if !s.entropy.DecodeMCU(blocks) {
				cur.suspendAt(yoffset, col)
				return Suspended, nil
			}

			blkn := 0
			for i := range layout.Components {
				sc := &layout.Components[i]
				comp := sc.Info
				if !comp.Needed {
					blkn += sc.MCUBlocks
					continue
				}
				usefulWidth := sc.MCUWidth
				if col == lastMCUCol {
					usefulWidth = sc.LastColWidth
				}
				rows := out[comp.Index][yoffset*comp.DCTScaledSize:]
				startCol := col * sc.MCUSampleWidth
				for yindex := 0; yindex < sc.MCUHeight; yindex++ {
					// dummy blocks below the image are decoded but not shown
					if cur.RowGroup < lastRowGroup || yoffset+yindex < sc.LastRowHeight {
						outCol := startCol
						for xindex := 0; xindex < usefulWidth; xindex++ {
							s.transform.Transform(comp, blocks[blkn+xindex], rows, outCol)
							outCol += comp.DCTScaledSize
						}
					}
					blkn += sc.MCUWidth
					rows = rows[comp.DCTScaledSize:]
				}
			}
		}
		cur.Column = 0
	}

	s.outputRowGroup++
	if cur.finishRowGroup(layout, s.frame.TotalRowGroups) {
		return RowCompleted, nil
	}
	s.finishInputPass()
	return ScanCompleted, nil
}
