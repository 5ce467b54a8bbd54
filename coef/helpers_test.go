package coef

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedMarkers hands out a fixed list of scans, then EOI. While stalled it
// suspends.
type scriptedMarkers struct {
	scans   []*Scan
	next    int
	stalled bool
}

func (m *scriptedMarkers) ReadScanHeader() (*Scan, DecodeStatus, error) {
	if m.stalled {
		return nil, Suspended, nil
	}
	if m.next >= len(m.scans) {
		return nil, ReachedEOI, nil
	}
	s := m.scans[m.next]
	m.next++
	return s, ReachedSOS, nil
}

// fakeEntropy fills units through fill. budget is the number of units it
// decodes before suspending; negative means unlimited. A non-nil startErr is
// returned by the next StartPass and then cleared.
type fakeEntropy struct {
	scan     *Scan
	scans    int
	unit     int
	budget   int
	startErr error
	fill     func(scan *Scan, scanIndex, unit int, blocks []*Block)
}

func (e *fakeEntropy) StartPass(scan *Scan) error {
	if err := e.startErr; err != nil {
		e.startErr = nil
		return err
	}
	e.scan = scan
	e.scans++
	e.unit = 0
	return nil
}

func (e *fakeEntropy) DecodeMCU(blocks []*Block) bool {
	if e.budget == 0 {
		return false
	}
	if e.budget > 0 {
		e.budget--
	}
	if e.fill != nil {
		e.fill(e.scan, e.scans-1, e.unit, blocks)
	}
	e.unit++
	return true
}

type transformCall struct {
	comp   int
	outCol int
	coefs  Block
}

// recordingTransform writes the low byte of the DC to every output sample of
// the block and remembers each call.
type recordingTransform struct {
	calls []transformCall
}

func (r *recordingTransform) Transform(comp *ComponentInfo, coefs *Block, out [][]byte, outCol int) {
	r.calls = append(r.calls, transformCall{comp: comp.Index, outCol: outCol, coefs: *coefs})
	for y := 0; y < comp.DCTScaledSize; y++ {
		for x := 0; x < comp.DCTScaledSize; x++ {
			out[y][outCol+x] = byte(coefs[0])
		}
	}
}

func (r *recordingTransform) forComponent(ci int) []transformCall {
	var out []transformCall
	for _, c := range r.calls {
		if c.comp == ci {
			out = append(out, c)
		}
	}
	return out
}

func flatQuant(v uint16) *QuantTable {
	qt := &QuantTable{}
	for i := range qt {
		qt[i] = v
	}
	return qt
}

func grayFrame(t *testing.T, width, height int, progressive bool) *Frame {
	t.Helper()
	f, err := NewFrame(width, height, progressive, []ComponentInfo{
		{ID: 1, HSamp: 1, VSamp: 1, QuantTable: flatQuant(1)},
	})
	require.NoError(t, err)
	return f
}

func sequentialScan(comps ...int) *Scan {
	return &Scan{Components: comps, Ss: 0, Se: 63}
}

// dcFromUnit stores unit+1 as the DC of the first block of each unit on DC
// scans and leaves AC scans alone.
func dcFromUnit(scan *Scan, _, unit int, blocks []*Block) {
	if scan.Ss == 0 {
		blocks[0].SetDC(int16(unit + 1))
	}
}

type sessionFixture struct {
	session   *Session
	markers   *scriptedMarkers
	entropy   *fakeEntropy
	transform *recordingTransform
}

func newFixture(t *testing.T, f *Frame, scans []*Scan, opts *Options) *sessionFixture {
	t.Helper()
	fx := &sessionFixture{
		markers:   &scriptedMarkers{scans: scans},
		entropy:   &fakeEntropy{budget: -1},
		transform: &recordingTransform{},
	}
	s, err := NewSession(f, Collaborators{
		Markers:   fx.markers,
		Entropy:   fx.entropy,
		Transform: fx.transform,
	}, opts)
	require.NoError(t, err)
	fx.session = s
	return fx
}

func noSmoothing() *Options {
	opts := DefaultOptions()
	opts.DoBlockSmoothing = false
	return opts
}
