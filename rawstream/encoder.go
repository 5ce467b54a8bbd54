package rawstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/leijurv/jpeg_coef_go/coef"
)

// Encode writes frame and coefficients as a stream made of the scans in
// script. coefficients holds one array per component, sized like the
// controller's block stores (padded to whole units). Units are written in
// the order the controller reads them, dummy blocks included.
func Encode(w io.Writer, frame *coef.Frame, coefficients []coef.BlockArray, script []coef.Scan) error {
	if len(coefficients) != len(frame.Components) {
		return fmt.Errorf("rawstream: %d coefficient arrays for %d components", len(coefficients), len(frame.Components))
	}
	for ci := range frame.Components {
		c := &frame.Components[ci]
		arr := coefficients[ci]
		if arr.Cols() < c.StoreWidth() || arr.Rows() < c.StoreHeight() {
			return fmt.Errorf("rawstream: component %d array %dx%d, need %dx%d",
				ci, arr.Cols(), arr.Rows(), c.StoreWidth(), c.StoreHeight())
		}
	}

	bw := bufio.NewWriter(w)
	buf := appendFrame(nil, frame)
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	for i := range script {
		scan := &script[i]
		l, err := coef.NewScanLayout(frame, scan)
		if err != nil {
			return fmt.Errorf("rawstream: scan %d: %w", i, err)
		}
		if _, err := bw.Write(appendScan(buf[:0], scan)); err != nil {
			return err
		}
		if err := writeScan(bw, frame, coefficients, l); err != nil {
			return fmt.Errorf("rawstream: scan %d: %w", i, err)
		}
	}
	if err := bw.WriteByte(markerEnd); err != nil {
		return err
	}
	return bw.Flush()
}

func writeScan(bw *bufio.Writer, frame *coef.Frame, coefficients []coef.BlockArray, l *coef.ScanLayout) error {
	scan := l.Scan
	var tmp [2]byte
	writeBlock := func(b *coef.Block) error {
		for k := scan.Ss; k <= scan.Se; k++ {
			v := b.Zigzag(k) >> scan.Al
			if scan.Ah != 0 {
				v &= 1
			}
			binary.LittleEndian.PutUint16(tmp[:], uint16(v))
			if _, err := bw.Write(tmp[:]); err != nil {
				return err
			}
		}
		return nil
	}

	if !l.Interleaved() {
		comp := l.Components[0].Info
		arr := coefficients[comp.Index]
		for y := 0; y < l.MCURowsInScan; y++ {
			rows, err := arr.AccessRows(y, 1, false)
			if err != nil {
				return err
			}
			for x := 0; x < l.MCUsPerRow; x++ {
				if err := writeBlock(&rows[0][x]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for row := 0; row < l.MCURowsInScan; row++ {
		views := make([][][]coef.Block, len(l.Components))
		for i := range l.Components {
			comp := l.Components[i].Info
			rows, err := coefficients[comp.Index].AccessRows(row*comp.VSamp, comp.VSamp, false)
			if err != nil {
				return err
			}
			views[i] = rows
		}
		for col := 0; col < l.MCUsPerRow; col++ {
			for i := range l.Components {
				sc := &l.Components[i]
				for yindex := 0; yindex < sc.MCUHeight; yindex++ {
					for xindex := 0; xindex < sc.MCUWidth; xindex++ {
						if err := writeBlock(&views[i][yindex][col*sc.MCUWidth+xindex]); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}
