package coef

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

// PagedAllocator hands out arrays that keep only a window of rows in memory.
// Rows that leave the window are compressed with zstd and kept as pages;
// rows that were never written read back as zeros.
type PagedAllocator struct {
	// ResidentRows is the number of rows each array keeps in memory. It is
	// raised to the array's access window when smaller.
	ResidentRows int

	// Level is the zstd encoder level. Zero means zstd.SpeedFastest.
	Level zstd.EncoderLevel

	enc *zstd.Encoder
	dec *zstd.Decoder

	spilledRows  atomic.Int64
	spilledBytes atomic.Int64
	loadedRows   atomic.Int64
}

// PagedStats reports how much data went through the backing pages
type PagedStats struct {
	SpilledRows  int64
	SpilledBytes int64
	LoadedRows   int64
}

// RequestArray allocates a paged array
func (a *PagedAllocator) RequestArray(component, widthInBlocks, heightInBlocks, rowsPerAccess int) (BlockArray, error) {
	if widthInBlocks <= 0 || heightInBlocks <= 0 || rowsPerAccess <= 0 {
		return nil, errorf(ErrCodeBadVirtualAccess, "component %d array %dx%d window %d",
			component, widthInBlocks, heightInBlocks, rowsPerAccess)
	}
	if err := a.init(); err != nil {
		return nil, err
	}

	resident := max(a.ResidentRows, rowsPerAccess)
	resident = min(resident, heightInBlocks)

	p := &pagedArray{
		alloc:     a,
		cols:      widthInBlocks,
		rows:      heightInBlocks,
		maxAccess: rowsPerAccess,
		mem:       make([]Block, resident*widthInBlocks),
		view:      make([][]Block, resident),
		pages:     make([][]byte, heightInBlocks),
		first:     0,
		resident:  resident,
	}
	for i := range p.view {
		p.view[i] = p.mem[i*widthInBlocks : (i+1)*widthInBlocks : (i+1)*widthInBlocks]
	}
	return p, nil
}

func (a *PagedAllocator) init() error {
	if a.enc != nil {
		return nil
	}
	level := a.Level
	if level == 0 {
		level = zstd.SpeedFastest
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return errorf(ErrCodeBackingStore, "zstd encoder: %v", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return errorf(ErrCodeBackingStore, "zstd decoder: %v", err)
	}
	a.enc = enc
	a.dec = dec
	return nil
}

// Stats returns spill counters across all arrays of this allocator
func (a *PagedAllocator) Stats() PagedStats {
	return PagedStats{
		SpilledRows:  a.spilledRows.Load(),
		SpilledBytes: a.spilledBytes.Load(),
		LoadedRows:   a.loadedRows.Load(),
	}
}

// Close releases the zstd encoder and decoder
func (a *PagedAllocator) Close() error {
	var err error
	if a.enc != nil {
		err = a.enc.Close()
		a.enc = nil
	}
	if a.dec != nil {
		a.dec.Close()
		a.dec = nil
	}
	return err
}

type pagedArray struct {
	alloc     *PagedAllocator
	cols      int
	rows      int
	maxAccess int

	// mem holds the resident rows first..first+resident
	mem  []Block
	view [][]Block

	// pages holds one compressed page per row; nil means all zero
	pages [][]byte

	first    int
	resident int
	dirty    bool

	scratch []byte
}

func (p *pagedArray) Cols() int { return p.cols }
func (p *pagedArray) Rows() int { return p.rows }

func (p *pagedArray) AccessRows(start, count int, writable bool) ([][]Block, error) {
	if err := checkAccess(start, count, p.rows, p.maxAccess); err != nil {
		return nil, err
	}
	if start < p.first || start+count > p.first+p.resident {
		if err := p.flush(); err != nil {
			return nil, err
		}
		first := start
		if first+p.resident > p.rows {
			first = p.rows - p.resident
		}
		if err := p.load(first); err != nil {
			return nil, err
		}
	}
	if writable {
		p.dirty = true
	}
	off := start - p.first
	return p.view[off : off+count : off+count], nil
}

// flush writes the resident rows back to their pages if they were touched
func (p *pagedArray) flush() error {
	if !p.dirty {
		return nil
	}
	rowBytes := p.cols * DCTSize2 * 2
	if cap(p.scratch) < rowBytes {
		p.scratch = make([]byte, rowBytes)
	}
	raw := p.scratch[:rowBytes]
	for i := 0; i < p.resident; i++ {
		row := p.view[i]
		allZero := true
		for x := range row {
			for k, c := range row[x] {
				binary.LittleEndian.PutUint16(raw[(x*DCTSize2+k)*2:], uint16(c))
				if c != 0 {
					allZero = false
				}
			}
		}
		y := p.first + i
		if allZero {
			p.pages[y] = nil
			continue
		}
		p.pages[y] = p.alloc.enc.EncodeAll(raw, p.pages[y][:0])
		p.alloc.spilledRows.Add(1)
		p.alloc.spilledBytes.Add(int64(len(p.pages[y])))
	}
	p.dirty = false
	return nil
}

// load fills the resident window starting at first from the pages
func (p *pagedArray) load(first int) error {
	rowBytes := p.cols * DCTSize2 * 2
	for i := 0; i < p.resident; i++ {
		y := first + i
		row := p.view[i]
		if p.pages[y] == nil {
			clear(row)
			continue
		}
		raw, err := p.alloc.dec.DecodeAll(p.pages[y], p.scratch[:0])
		if err != nil {
			return errorf(ErrCodeBackingStore, "row %d: %v", y, err)
		}
		if len(raw) != rowBytes {
			return errorf(ErrCodeBackingStore, "row %d: page holds %d bytes, want %d", y, len(raw), rowBytes)
		}
		p.scratch = raw
		for x := range row {
			for k := range row[x] {
				row[x][k] = int16(binary.LittleEndian.Uint16(raw[(x*DCTSize2+k)*2:]))
			}
		}
		p.alloc.loadedRows.Add(1)
	}
	p.first = first
	return nil
}
