package coef

// Mode is the buffering variant of the coefficient controller
type Mode int

const (
	ModeUnset Mode = iota

	// SinglePass decodes each unit and transforms it straight to output
	SinglePass

	// MultiPass stores every block of the image and transforms on output
	MultiPass

	// MultiPassSmoothed is MultiPass with interblock smoothing on output
	MultiPassSmoothed
)

func (m Mode) String() string {
	switch m {
	case SinglePass:
		return "single-pass"
	case MultiPass:
		return "multi-pass"
	case MultiPassSmoothed:
		return "multi-pass smoothed"
	default:
		return "unset"
	}
}

type inputDriver interface {
	consume(s *Session) (DecodeStatus, error)
}

type outputDriver interface {
	decompress(s *Session, out SampleImage) (DecodeStatus, error)
}

// controller owns the coefficient buffers and the active drivers
type controller struct {
	mode Mode

	// wholeImage holds one block store per component in multi-pass mode
	wholeImage []BlockArray

	// mcuBuffer points at the blocks of the current unit
	mcuBuffer [MaxBlocksInMCU]*Block

	// workspace backs mcuBuffer in single-pass mode
	workspace [MaxBlocksInMCU]Block

	// scratch is the smoothing output block
	scratch Block

	// latch holds the precision ledger entries smoothing relies on
	latch [][SavedCoefs]int

	input  inputDriver
	output outputDriver
}

func newController(s *Session, needFullBuffer bool) (*controller, error) {
	c := &controller{}
	if !needFullBuffer {
		for i := range c.mcuBuffer {
			c.mcuBuffer[i] = &c.workspace[i]
		}
		c.mode = SinglePass
		c.input = singlePass{}
		c.output = singlePass{}
		return c, nil
	}

	if !multiScanSupported {
		return nil, ErrNotCompiled
	}
	f := s.frame
	c.wholeImage = make([]BlockArray, len(f.Components))
	for ci := range f.Components {
		comp := &f.Components[ci]
		access := comp.VSamp
		if f.Progressive {
			// smoothing reads a row-group on either side
			access *= 3
		}
		arr, err := s.alloc.RequestArray(ci, comp.StoreWidth(), comp.StoreHeight(), access)
		if err != nil {
			return nil, err
		}
		c.wholeImage[ci] = arr
	}
	c.mode = MultiPass
	c.input = multiPass{}
	c.output = multiPass{}
	return c, nil
}

// startOutputPass picks the output driver. The smoothing decision is made
// again for every pass since it depends on how far the input has come.
func (c *controller) startOutputPass(s *Session) {
	if c.wholeImage == nil {
		return
	}
	if s.opts.DoBlockSmoothing && c.smoothingOK(s) {
		c.mode = MultiPassSmoothed
		c.output = smoothedMultiPass{}
		return
	}
	c.mode = MultiPass
	c.output = multiPass{}
}
