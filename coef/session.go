package coef

import (
	"fmt"
	"log"
)

// ScanReader is the marker layer: it reads up to the next scan header or the
// end of the image.
type ScanReader interface {
	// ReadScanHeader returns ReachedSOS with the scan, ReachedEOI, or
	// Suspended when the header is not fully available yet.
	ReadScanHeader() (*Scan, DecodeStatus, error)
}

// EntropyDecoder turns entropy-coded data into coefficient blocks
type EntropyDecoder interface {
	// StartPass prepares for a new scan
	StartPass(scan *Scan) error

	// DecodeMCU decodes one unit into blocks, which arrive zeroed (single
	// pass) or holding the previous scans' data (multi pass), in interleave
	// order. It returns false when not enough input is available, without
	// touching any block.
	DecodeMCU(blocks []*Block) bool
}

// InverseTransform reconstructs samples from one coefficient block. It writes
// comp.DCTScaledSize rows of out starting at column outCol and keeps no state.
type InverseTransform interface {
	Transform(comp *ComponentInfo, coefs *Block, out [][]byte, outCol int)
}

// SampleImage holds one row-group of output: per component, its sample rows
type SampleImage [][][]byte

// Collaborators are the external pieces a session drives
type Collaborators struct {
	Markers   ScanReader
	Entropy   EntropyDecoder
	Transform InverseTransform // defaults to IntegerIDCT
	Allocator Allocator        // defaults to MemoryAllocator
}

// Options configures a session
type Options struct {
	// BufferedImage keeps the full-image buffer and lets the caller run an
	// output pass per scan with StartOutput/FinishOutput.
	BufferedImage bool

	// DoBlockSmoothing enables interblock smoothing of progressive output
	DoBlockSmoothing bool

	// Logger receives warnings and pass decisions; nil means silent
	Logger *log.Logger
}

// DefaultOptions returns the default session options
func DefaultOptions() *Options {
	return &Options{DoBlockSmoothing: true}
}

type sessionState int

const (
	stateHeader sessionState = iota
	stateReady
	stateAbsorbing
	stateScanning
	stateBufImage
	stateCoefficients
	stateDone
)

// Session is the state of one decode: input and output cursors, scan
// counters, precision ledger and the coefficient controller. Sessions share
// nothing, so any number can run side by side.
type Session struct {
	frame     *Frame
	opts      Options
	markers   ScanReader
	entropy   EntropyDecoder
	transform InverseTransform
	alloc     Allocator

	state   sessionState
	pending *Scan

	// input side
	layout           *ScanLayout
	cursor           UnitTraversalState
	inScan           bool
	eoiReached       bool
	hasMultipleScans bool
	inputScanNumber  int

	// output side
	outputScanNumber int
	outputRowGroup   int
	outputActive     bool

	coefBits PrecisionLedger
	coef     *controller
}

// NewSession creates a decode session for frame
func NewSession(frame *Frame, c Collaborators, opts *Options) (*Session, error) {
	if c.Markers == nil || c.Entropy == nil {
		return nil, NewCoefError(ErrCodeBadState, "marker reader and entropy decoder are required")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	s := &Session{
		frame:     frame,
		opts:      *opts,
		markers:   c.Markers,
		entropy:   c.Entropy,
		transform: c.Transform,
		alloc:     c.Allocator,
	}
	if s.transform == nil {
		s.transform = IntegerIDCT{}
	}
	if s.alloc == nil {
		s.alloc = MemoryAllocator{}
	}
	for i := range frame.Components {
		size := frame.Components[i].DCTScaledSize
		if !supportsScaledSize(s.transform, size) {
			return nil, errorf(ErrCodeBadScaledSize, "component %d scaled size %d", i, size)
		}
	}
	return s, nil
}

// Frame returns the frame being decoded
func (s *Session) Frame() *Frame {
	return s.frame
}

// ReadHeader consumes markers up to the first scan header. It returns
// ReachedSOS once the header is in, or Suspended.
func (s *Session) ReadHeader() (DecodeStatus, error) {
	if s.state != stateHeader {
		return ReachedSOS, nil
	}
	scan, st, err := s.markers.ReadScanHeader()
	if err != nil {
		return Suspended, fmt.Errorf("reading first scan header: %w", err)
	}
	switch st {
	case ReachedSOS:
		if _, err := NewScanLayout(s.frame, scan); err != nil {
			return Suspended, err
		}
		s.pending = scan
		s.state = stateReady
		return ReachedSOS, nil
	case ReachedEOI:
		return Suspended, NewCoefError(ErrCodeBadScan, "no scans in image")
	default:
		return Suspended, nil
	}
}

// StartDecompress selects the buffering mode, allocates the coefficient
// buffer and prepares the first output pass. Multi-scan input is absorbed in
// full first unless the session is in buffered-image mode. It returns false
// when suspended; call it again after supplying more input.
func (s *Session) StartDecompress() (bool, error) {
	if s.state == stateHeader {
		st, err := s.ReadHeader()
		if err != nil || st == Suspended {
			return false, err
		}
	}

	if s.state == stateReady {
		if err := s.checkNeededComponents(); err != nil {
			return false, err
		}
		multipleScans := s.frame.Progressive || len(s.pending.Components) < len(s.frame.Components)
		needFullBuffer := multipleScans || s.opts.BufferedImage
		if err := s.initController(needFullBuffer, multipleScans); err != nil {
			return false, err
		}
		switch {
		case s.opts.BufferedImage:
			s.state = stateBufImage
			return true, nil
		case multipleScans:
			s.state = stateAbsorbing
		default:
			s.state = stateScanning
			s.outputScanNumber = s.inputScanNumber
			s.startOutputPass()
			return true, nil
		}
	}

	switch s.state {
	case stateAbsorbing:
		for {
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
		s.state = stateScanning
		s.outputScanNumber = s.inputScanNumber
		s.startOutputPass()
		return true, nil
	case stateScanning, stateBufImage:
		return true, nil
	default:
		return false, ErrBadState
	}
}

// ReadCoefficients absorbs the whole input into full-image buffers and
// returns them, one per component. It returns false when suspended.
func (s *Session) ReadCoefficients() ([]BlockArray, bool, error) {
	if s.state == stateHeader {
		st, err := s.ReadHeader()
		if err != nil || st == Suspended {
			return nil, false, err
		}
	}
	if s.state == stateReady {
		multipleScans := s.frame.Progressive || len(s.pending.Components) < len(s.frame.Components)
		if err := s.initController(true, multipleScans); err != nil {
			return nil, false, err
		}
		s.state = stateCoefficients
	}
	if s.state != stateCoefficients {
		return nil, false, ErrBadState
	}
	for !s.eoiReached {
		st, err := s.ConsumeInput()
		if err != nil {
			return nil, false, err
		}
		if st == Suspended {
			return nil, false, nil
		}
	}
	return s.coef.wholeImage, true, nil
}

func (s *Session) initController(needFullBuffer, multipleScans bool) error {
	c, err := newController(s, needFullBuffer)
	if err != nil {
		return err
	}
	layout, err := s.prepareInputPass(s.pending)
	if err != nil {
		return err
	}
	if s.frame.Progressive {
		s.coefBits = newPrecisionLedger(len(s.frame.Components))
	}
	s.hasMultipleScans = multipleScans
	s.coef = c
	s.pending = nil
	s.commitInputPass(layout)
	return nil
}

// ConsumeInput advances the input side by one step: a row-group of the
// current scan, or the next scan header. In single-pass mode the input side
// only moves with the output, so inside a scan this returns Suspended.
func (s *Session) ConsumeInput() (DecodeStatus, error) {
	switch s.state {
	case stateHeader:
		return s.ReadHeader()
	case stateReady:
		return ReachedSOS, nil
	}

	if s.inScan {
		return s.coef.input.consume(s)
	}
	if s.eoiReached {
		return ReachedEOI, nil
	}

	scan, st, err := s.markers.ReadScanHeader()
	if err != nil {
		return Suspended, fmt.Errorf("reading scan header: %w", err)
	}
	switch st {
	case ReachedSOS:
		if !s.hasMultipleScans {
			return Suspended, NewCoefError(ErrCodeBadScan, "expected end of image after single scan")
		}
		if err := s.startInputPass(scan); err != nil {
			return Suspended, err
		}
		return ReachedSOS, nil
	case ReachedEOI:
		s.eoiReached = true
		// keep the output forcing loops from waiting on scans that never come
		if s.outputScanNumber > s.inputScanNumber {
			s.outputScanNumber = s.inputScanNumber
		}
		return ReachedEOI, nil
	default:
		return Suspended, nil
	}
}

func (s *Session) startInputPass(scan *Scan) error {
	layout, err := s.prepareInputPass(scan)
	if err != nil {
		return err
	}
	s.commitInputPass(layout)
	return nil
}

// prepareInputPass lays out scan and starts the entropy pass. Session state
// is left alone so a failure can be retried.
func (s *Session) prepareInputPass(scan *Scan) (*ScanLayout, error) {
	layout, err := NewScanLayout(s.frame, scan)
	if err != nil {
		return nil, err
	}
	if err := s.entropy.StartPass(scan); err != nil {
		return nil, fmt.Errorf("starting entropy pass: %w", err)
	}
	return layout, nil
}

func (s *Session) commitInputPass(layout *ScanLayout) {
	if s.coefBits != nil {
		s.coefBits.update(s, layout.Scan)
	}
	s.layout = layout
	s.inScan = true
	s.inputScanNumber++
	s.cursor.startPass(layout, s.frame.TotalRowGroups)
}

// finishInputPass is called exactly once when a scan's input is consumed
func (s *Session) finishInputPass() {
	s.inScan = false
}

func (s *Session) startOutputPass() {
	s.coef.startOutputPass(s)
	s.outputRowGroup = 0
	s.outputActive = true
	s.tracef("output pass for scan %d: %s", s.outputScanNumber, s.coef.mode)
}

// ReadRowGroup reconstructs one row-group into out. It returns RowCompleted,
// ScanCompleted after the last row-group, or Suspended.
func (s *Session) ReadRowGroup(out SampleImage) (DecodeStatus, error) {
	if (s.state != stateScanning && s.state != stateBufImage) || !s.outputActive {
		return Suspended, ErrBadState
	}
	if s.outputRowGroup >= s.frame.TotalRowGroups {
		return ScanCompleted, nil
	}
	if err := s.checkOutput(out); err != nil {
		return Suspended, err
	}
	return s.coef.output.decompress(s, out)
}

// FinishDecompress reads the rest of the input up to the end of the image.
// It returns false when suspended.
func (s *Session) FinishDecompress() (bool, error) {
	switch s.state {
	case stateScanning, stateBufImage, stateCoefficients:
	case stateDone:
		return true, nil
	default:
		return false, ErrBadState
	}
	if s.state == stateScanning && s.outputRowGroup < s.frame.TotalRowGroups {
		return false, NewCoefError(ErrCodeBadState, "output pass not finished")
	}
	for !s.eoiReached {
		st, err := s.ConsumeInput()
		if err != nil {
			return false, err
		}
		if st == Suspended {
			return false, nil
		}
	}
	s.outputActive = false
	s.state = stateDone
	return true, nil
}

// StartOutput begins a buffered-image output pass that shows the data of
// scan scanNumber (clamped to what the input has reached once EOI is seen).
func (s *Session) StartOutput(scanNumber int) error {
	if s.state != stateBufImage || s.outputActive {
		return ErrBadState
	}
	if scanNumber <= 0 {
		scanNumber = 1
	}
	if s.eoiReached && scanNumber > s.inputScanNumber {
		scanNumber = s.inputScanNumber
	}
	s.outputScanNumber = scanNumber
	s.startOutputPass()
	return nil
}

// FinishOutput ends a buffered-image output pass and reads input up to the
// next scan header or the end of the image. It returns false when suspended;
// call it again after supplying more input.
func (s *Session) FinishOutput() (bool, error) {
	if s.state != stateBufImage {
		return false, ErrBadState
	}
	s.outputActive = false
	for s.inputScanNumber <= s.outputScanNumber && !s.eoiReached {
		st, err := s.ConsumeInput()
		if err != nil {
			return false, err
		}
		if st == Suspended {
			return false, nil
		}
	}
	return true, nil
}

// Mode returns the active buffering variant
func (s *Session) Mode() Mode {
	if s.coef == nil {
		return ModeUnset
	}
	return s.coef.mode
}

// Cursor returns the input-side traversal state
func (s *Session) Cursor() UnitTraversalState {
	return s.cursor
}

// InputRowGroup returns the input side's current row-group
func (s *Session) InputRowGroup() int {
	return s.cursor.RowGroup
}

// OutputRowGroup returns the output side's current row-group
func (s *Session) OutputRowGroup() int {
	return s.outputRowGroup
}

// TotalRowGroups returns the number of row-groups in the image
func (s *Session) TotalRowGroups() int {
	return s.frame.TotalRowGroups
}

// InputScanNumber returns the number of scans started on the input side
func (s *Session) InputScanNumber() int {
	return s.inputScanNumber
}

// OutputScanNumber returns the scan the current output pass shows
func (s *Session) OutputScanNumber() int {
	return s.outputScanNumber
}

// InputComplete reports whether the end of the image has been read
func (s *Session) InputComplete() bool {
	return s.eoiReached
}

// CoefBits returns a copy of the precision ledger (nil unless progressive)
func (s *Session) CoefBits() PrecisionLedger {
	return s.coefBits.Clone()
}

// CoefArrays returns the full-image buffers, or nil in single-pass mode
func (s *Session) CoefArrays() []BlockArray {
	if s.coef == nil {
		return nil
	}
	return s.coef.wholeImage
}

// NewSampleImage allocates an output buffer for one row-group
func (s *Session) NewSampleImage() SampleImage {
	out := make(SampleImage, len(s.frame.Components))
	for ci := range s.frame.Components {
		c := &s.frame.Components[ci]
		rows := make([][]byte, c.OutputRows())
		pix := make([]byte, c.OutputRows()*c.OutputWidth())
		for y := range rows {
			rows[y] = pix[y*c.OutputWidth() : (y+1)*c.OutputWidth()]
		}
		out[ci] = rows
	}
	return out
}

func (s *Session) checkNeededComponents() error {
	for ci := range s.frame.Components {
		c := &s.frame.Components[ci]
		if c.Needed && c.QuantTable == nil {
			return errorf(ErrCodeNoQuantTable, "component %d has no quantization table", ci)
		}
	}
	return nil
}

func (s *Session) checkOutput(out SampleImage) error {
	if len(out) < len(s.frame.Components) {
		return errorf(ErrCodeBadOutputBuffer, "%d planes for %d components", len(out), len(s.frame.Components))
	}
	for ci := range s.frame.Components {
		c := &s.frame.Components[ci]
		if !c.Needed {
			continue
		}
		if len(out[ci]) < c.OutputRows() {
			return errorf(ErrCodeBadOutputBuffer, "component %d: %d rows, need %d", ci, len(out[ci]), c.OutputRows())
		}
		for _, row := range out[ci][:c.OutputRows()] {
			if len(row) < c.OutputWidth() {
				return errorf(ErrCodeBadOutputBuffer, "component %d: row of %d samples, need %d", ci, len(row), c.OutputWidth())
			}
		}
	}
	return nil
}

func (s *Session) warnf(code ErrorCode, format string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("coef: warning %s: %s", code, fmt.Sprintf(format, args...))
	}
}

func (s *Session) tracef(format string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("coef: "+format, args...)
	}
}
