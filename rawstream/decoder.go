package rawstream

import (
	"encoding/binary"
	"fmt"

	"github.com/leijurv/jpeg_coef_go/coef"
)

// Decoder parses a stream fed to it in pieces. It is the marker reader and
// the entropy decoder of a coef.Session at once. Whenever a call needs bytes
// that have not been fed yet it suspends without consuming anything.
type Decoder struct {
	buf []byte
	pos int

	frame *coef.Frame
	scan  *coef.Scan

	blocksPerUnit int
	unitsLeft     int
}

// NewDecoder creates a decoder with no input
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends more stream bytes
func (d *Decoder) Feed(p []byte) {
	if d.pos > 0 && d.pos >= len(d.buf)/2 {
		n := copy(d.buf, d.buf[d.pos:])
		d.buf = d.buf[:n]
		d.pos = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of fed bytes not consumed yet
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.pos
}

// ReadFrame parses the frame header. It returns false when more input is
// needed.
func (d *Decoder) ReadFrame() (*coef.Frame, bool, error) {
	if d.frame != nil {
		return d.frame, true, nil
	}
	f, n, err := parseFrame(d.buf[d.pos:])
	if err != nil || n == 0 {
		return nil, false, err
	}
	d.pos += n
	d.frame = f
	return f, true, nil
}

// ReadScanHeader reads the next scan header or the end marker
func (d *Decoder) ReadScanHeader() (*coef.Scan, coef.DecodeStatus, error) {
	if d.frame == nil {
		return nil, coef.Suspended, ErrNoFrame
	}
	if d.unitsLeft > 0 {
		return nil, coef.Suspended, ErrScanNotFinished
	}
	data := d.buf[d.pos:]
	if len(data) == 0 {
		return nil, coef.Suspended, nil
	}
	switch data[0] {
	case markerEnd:
		d.pos++
		return nil, coef.ReachedEOI, nil
	case markerScan:
		scan, n, err := parseScan(data)
		if err != nil || n == 0 {
			return nil, coef.Suspended, err
		}
		d.pos += n
		return scan, coef.ReachedSOS, nil
	default:
		return nil, coef.Suspended, fmt.Errorf("%w: 0x%02x at offset %d", ErrBadMarker, data[0], d.pos)
	}
}

// StartPass prepares to hand out the units of scan
func (d *Decoder) StartPass(scan *coef.Scan) error {
	l, err := coef.NewScanLayout(d.frame, scan)
	if err != nil {
		return err
	}
	d.scan = scan
	d.blocksPerUnit = l.BlocksInMCU
	d.unitsLeft = scanUnits(l)
	return nil
}

// DecodeMCU fills blocks with the next unit. First scans of a coefficient
// store v<<Al, refinement scans add it.
func (d *Decoder) DecodeMCU(blocks []*coef.Block) bool {
	scan := d.scan
	perBlock := scan.Se - scan.Ss + 1
	need := len(blocks) * perBlock * 2
	if d.unitsLeft == 0 || d.Buffered() < need {
		return false
	}

	data := d.buf[d.pos : d.pos+need]
	for _, b := range blocks {
		for k := scan.Ss; k <= scan.Se; k++ {
			v := int16(binary.LittleEndian.Uint16(data)) << scan.Al
			data = data[2:]
			if scan.Ah == 0 {
				b.SetZigzag(k, v)
			} else {
				b.SetZigzag(k, b.Zigzag(k)+v)
			}
		}
	}
	d.pos += need
	d.unitsLeft--
	return true
}
