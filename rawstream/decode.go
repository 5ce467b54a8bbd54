package rawstream

import (
	"fmt"
	"log"

	"github.com/leijurv/jpeg_coef_go/coef"
)

// DecodeOptions configures DecodeAll
type DecodeOptions struct {
	// Chunk is how many bytes are fed to the decoder at a time. Zero feeds
	// the whole stream at once.
	Chunk int

	// BufferedImage runs one output pass per scan
	BufferedImage bool

	// DoBlockSmoothing enables interblock smoothing of progressive output
	DoBlockSmoothing bool

	// Allocator provides the block stores; nil keeps them in memory
	Allocator coef.Allocator

	// Transform reconstructs samples; nil uses coef.IntegerIDCT
	Transform coef.InverseTransform

	// Logger receives controller warnings
	Logger *log.Logger

	// OnPass is called after every completed output pass with the scan it
	// showed and the image so far
	OnPass func(scan int, img *Image)
}

// DefaultDecodeOptions returns options that feed the whole stream at once
// with smoothing on
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{DoBlockSmoothing: true}
}

// Plane holds the samples of one component
type Plane struct {
	Width  int
	Height int
	Pix    []byte
}

// Row returns sample row y
func (p *Plane) Row(y int) []byte {
	return p.Pix[y*p.Width : (y+1)*p.Width]
}

// Image is a decoded image, one plane per component
type Image struct {
	Width  int
	Height int
	Planes []Plane

	// Passes is the number of output passes that were run
	Passes int
}

func newImage(f *coef.Frame) *Image {
	img := &Image{Width: f.Width, Height: f.Height, Planes: make([]Plane, len(f.Components))}
	for ci := range f.Components {
		c := &f.Components[ci]
		p := &img.Planes[ci]
		p.Width = c.OutputWidth()
		p.Height = c.HeightInBlocks * c.DCTScaledSize
		p.Pix = make([]byte, p.Width*p.Height)
	}
	return img
}

func (img *Image) storeRowGroup(f *coef.Frame, rowGroup int, out coef.SampleImage) {
	for ci := range f.Components {
		c := &f.Components[ci]
		if !c.Needed {
			continue
		}
		p := &img.Planes[ci]
		y0 := rowGroup * c.OutputRows()
		for y := 0; y < c.OutputRows() && y0+y < p.Height; y++ {
			copy(p.Row(y0+y), out[ci][y][:p.Width])
		}
	}
}

type feeder struct {
	d     *Decoder
	data  []byte
	pos   int
	chunk int
}

// next feeds the next chunk and returns false when the data is used up
func (f *feeder) next() bool {
	if f.pos >= len(f.data) {
		return false
	}
	n := len(f.data) - f.pos
	if f.chunk > 0 {
		n = min(n, f.chunk)
	}
	f.d.Feed(f.data[f.pos : f.pos+n])
	f.pos += n
	return true
}

// retry calls step until it completes, feeding more data after each
// suspension
func (f *feeder) retry(step func() (bool, error)) error {
	for {
		ok, err := step()
		if err != nil || ok {
			return err
		}
		if !f.next() {
			return ErrTruncated
		}
	}
}

// DecodeAll decodes a whole stream, feeding it to the session in chunks
func DecodeAll(data []byte, opts *DecodeOptions) (*Image, error) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}
	d := NewDecoder()
	in := &feeder{d: d, data: data, chunk: opts.Chunk}

	var frame *coef.Frame
	err := in.retry(func() (bool, error) {
		f, ok, err := d.ReadFrame()
		frame = f
		return ok, err
	})
	if err != nil {
		return nil, err
	}

	s, err := coef.NewSession(frame, coef.Collaborators{
		Markers:   d,
		Entropy:   d,
		Transform: opts.Transform,
		Allocator: opts.Allocator,
	}, &coef.Options{
		BufferedImage:    opts.BufferedImage,
		DoBlockSmoothing: opts.DoBlockSmoothing,
		Logger:           opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if err := in.retry(s.StartDecompress); err != nil {
		return nil, fmt.Errorf("starting decompression: %w", err)
	}

	img := newImage(frame)
	out := s.NewSampleImage()
	readPass := func() error {
		rowGroup := 0
		for {
			st, err := s.ReadRowGroup(out)
			if err != nil {
				return fmt.Errorf("row-group %d: %w", rowGroup, err)
			}
			if st == coef.Suspended {
				if !in.next() {
					return ErrTruncated
				}
				continue
			}
			if rowGroup >= s.TotalRowGroups() {
				return fmt.Errorf("row-group %d past the last of %d", rowGroup, s.TotalRowGroups())
			}
			img.storeRowGroup(frame, rowGroup, out)
			rowGroup++
			if st == coef.ScanCompleted {
				img.Passes++
				if opts.OnPass != nil {
					opts.OnPass(s.OutputScanNumber(), img)
				}
				return nil
			}
		}
	}

	if !opts.BufferedImage {
		if err := readPass(); err != nil {
			return nil, err
		}
		if err := in.retry(s.FinishDecompress); err != nil {
			return nil, err
		}
		return img, nil
	}

	for {
		if err := s.StartOutput(s.InputScanNumber()); err != nil {
			return nil, err
		}
		if err := readPass(); err != nil {
			return nil, err
		}
		if err := in.retry(s.FinishOutput); err != nil {
			return nil, err
		}
		if s.InputComplete() && s.OutputScanNumber() >= s.InputScanNumber() {
			break
		}
	}
	if err := in.retry(s.FinishDecompress); err != nil {
		return nil, err
	}
	return img, nil
}

// ReadCoefficients parses a whole stream into full-image coefficient arrays
func ReadCoefficients(data []byte, chunk int) (*coef.Frame, []coef.BlockArray, error) {
	d := NewDecoder()
	in := &feeder{d: d, data: data, chunk: chunk}
	var frame *coef.Frame
	err := in.retry(func() (bool, error) {
		f, ok, err := d.ReadFrame()
		frame = f
		return ok, err
	})
	if err != nil {
		return nil, nil, err
	}
	s, err := coef.NewSession(frame, coef.Collaborators{Markers: d, Entropy: d}, nil)
	if err != nil {
		return nil, nil, err
	}
	var arrays []coef.BlockArray
	err = in.retry(func() (bool, error) {
		a, ok, err := s.ReadCoefficients()
		arrays = a
		return ok, err
	})
	if err != nil {
		return nil, nil, err
	}
	return frame, arrays, nil
}
