// Package rawstream reads and writes a plain container of already entropy
// decoded coefficients, laid out scan by scan in the order the coefficient
// controller consumes them. It stands in for a real entropy layer so a
// coef.Session can be driven from bytes arriving in arbitrary chunks.
package rawstream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/leijurv/jpeg_coef_go/coef"
)

// Magic starts every stream
const Magic = "RCF1"

const (
	markerScan = 'S'
	markerEnd  = 'E'

	flagProgressive = 1 << 0

	frameHeaderSize     = 4 + 2 + 2 + 1 + 1
	componentHeaderSize = 2 + coef.DCTSize2*2
)

var (
	ErrBadMagic        = errors.New("rawstream: bad magic")
	ErrBadHeader       = errors.New("rawstream: bad frame header")
	ErrBadMarker       = errors.New("rawstream: bad marker")
	ErrScanNotFinished = errors.New("rawstream: scan header before end of scan data")
	ErrNoFrame         = errors.New("rawstream: frame header not read")
	ErrTruncated       = errors.New("rawstream: truncated stream")
)

// parseFrame parses the frame header at the start of data. It returns the
// number of bytes used, or 0 when data is too short.
func parseFrame(data []byte) (*coef.Frame, int, error) {
	if len(data) < frameHeaderSize {
		return nil, 0, nil
	}
	if string(data[:4]) != Magic {
		return nil, 0, ErrBadMagic
	}
	width := int(binary.LittleEndian.Uint16(data[4:]))
	height := int(binary.LittleEndian.Uint16(data[6:]))
	ncomp := int(data[8])
	flags := data[9]
	if ncomp < 1 || ncomp > coef.MaxComponents {
		return nil, 0, fmt.Errorf("%w: %d components", ErrBadHeader, ncomp)
	}

	size := frameHeaderSize + ncomp*componentHeaderSize
	if len(data) < size {
		return nil, 0, nil
	}

	pos := frameHeaderSize
	comps := make([]coef.ComponentInfo, ncomp)
	for i := range comps {
		qt := &coef.QuantTable{}
		comps[i] = coef.ComponentInfo{
			ID:         i + 1,
			HSamp:      int(data[pos]),
			VSamp:      int(data[pos+1]),
			QuantTable: qt,
		}
		pos += 2
		for k := range qt {
			qt[k] = binary.LittleEndian.Uint16(data[pos:])
			pos += 2
		}
	}

	f, err := coef.NewFrame(width, height, flags&flagProgressive != 0, comps)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	return f, size, nil
}

// appendFrame appends the frame header of f to dst
func appendFrame(dst []byte, f *coef.Frame) []byte {
	dst = append(dst, Magic...)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(f.Width))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(f.Height))
	dst = append(dst, byte(len(f.Components)))
	var flags byte
	if f.Progressive {
		flags |= flagProgressive
	}
	dst = append(dst, flags)
	for i := range f.Components {
		c := &f.Components[i]
		dst = append(dst, byte(c.HSamp), byte(c.VSamp))
		for k := 0; k < coef.DCTSize2; k++ {
			var q uint16
			if c.QuantTable != nil {
				q = c.QuantTable[k]
			}
			dst = binary.LittleEndian.AppendUint16(dst, q)
		}
	}
	return dst
}

// parseScan parses a scan header after the 'S' marker byte. It returns the
// number of bytes used including the marker, or 0 when data is too short.
func parseScan(data []byte) (*coef.Scan, int, error) {
	if len(data) < 2 {
		return nil, 0, nil
	}
	ns := int(data[1])
	if ns < 1 || ns > coef.MaxCompsInScan {
		return nil, 0, fmt.Errorf("%w: %d components in scan", ErrBadMarker, ns)
	}
	size := 2 + ns + 4
	if len(data) < size {
		return nil, 0, nil
	}
	scan := &coef.Scan{Components: make([]int, ns)}
	for i := range scan.Components {
		scan.Components[i] = int(data[2+i])
	}
	p := data[2+ns:]
	scan.Ss, scan.Se, scan.Ah, scan.Al = int(p[0]), int(p[1]), int(p[2]), int(p[3])
	return scan, size, nil
}

func appendScan(dst []byte, scan *coef.Scan) []byte {
	dst = append(dst, markerScan, byte(len(scan.Components)))
	for _, ci := range scan.Components {
		dst = append(dst, byte(ci))
	}
	return append(dst, byte(scan.Ss), byte(scan.Se), byte(scan.Ah), byte(scan.Al))
}

// scanUnits returns the number of units a scan carries
func scanUnits(l *coef.ScanLayout) int {
	return l.MCUsPerRow * l.MCURowsInScan
}
