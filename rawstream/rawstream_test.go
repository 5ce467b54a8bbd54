package rawstream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leijurv/jpeg_coef_go/coef"
)

func encodeSynthetic(t *testing.T, width, height, comps int, progressive bool, script func(*coef.Frame) []coef.Scan) (*coef.Frame, []coef.BlockArray, []byte) {
	t.Helper()
	f, err := SynthFrame(width, height, comps, progressive, 2)
	require.NoError(t, err)
	arrays := Synthesize(f, 42)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f, arrays, script(f)))
	return f, arrays, buf.Bytes()
}

// realBlocks returns the blocks of the component's image area in raster order
func realBlocks(t *testing.T, c *coef.ComponentInfo, arr coef.BlockArray) []coef.Block {
	t.Helper()
	var out []coef.Block
	for y := 0; y < c.HeightInBlocks; y++ {
		rows, err := arr.AccessRows(y, 1, false)
		require.NoError(t, err)
		out = append(out, rows[0][:c.WidthInBlocks]...)
	}
	return out
}

func TestCoefficientRoundTrip(t *testing.T) {
	scripts := []struct {
		name        string
		progressive bool
		script      func(*coef.Frame) []coef.Scan
	}{
		{"baseline", false, BaselineScript},
		{"progressive", true, ProgressiveScript},
		{"spectral", true, SpectralScript},
	}
	for _, sc := range scripts {
		for _, chunk := range []int{0, 1, 7, 333} {
			t.Run(sc.name, func(t *testing.T) {
				f, want, data := encodeSynthetic(t, 45, 29, 3, sc.progressive, sc.script)
				gotFrame, got, err := ReadCoefficients(data, chunk)
				require.NoError(t, err)
				assert.Equal(t, f.Width, gotFrame.Width)
				assert.Equal(t, f.Progressive, gotFrame.Progressive)
				require.Len(t, got, len(want))
				for ci := range f.Components {
					c := &f.Components[ci]
					assert.Equal(t, realBlocks(t, c, want[ci]), realBlocks(t, c, got[ci]), "component %d chunk %d", ci, chunk)
				}
			})
		}
	}
}

func TestChunkedDecodeMatchesWhole(t *testing.T) {
	tests := []struct {
		name        string
		progressive bool
		script      func(*coef.Frame) []coef.Scan
		opts        DecodeOptions
	}{
		{"baseline single pass", false, BaselineScript, DecodeOptions{}},
		{"baseline buffered", false, BaselineScript, DecodeOptions{BufferedImage: true}},
		{"progressive", true, ProgressiveScript, DecodeOptions{DoBlockSmoothing: true}},
		{"progressive buffered smoothed", true, ProgressiveScript, DecodeOptions{BufferedImage: true, DoBlockSmoothing: true}},
		{"spectral buffered", true, SpectralScript, DecodeOptions{BufferedImage: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, data := encodeSynthetic(t, 40, 33, 3, tt.progressive, tt.script)

			wholeOpts := tt.opts
			whole, err := DecodeAll(data, &wholeOpts)
			require.NoError(t, err)

			for _, chunk := range []int{1, 5, 64, 1000} {
				opts := tt.opts
				opts.Chunk = chunk
				got, err := DecodeAll(data, &opts)
				require.NoError(t, err, "chunk %d", chunk)
				assert.Equal(t, whole.Planes, got.Planes, "chunk %d", chunk)
			}
		})
	}
}

func TestBufferedPassesFollowScans(t *testing.T) {
	f, _, data := encodeSynthetic(t, 32, 32, 1, true, ProgressiveScript)
	script := ProgressiveScript(f)

	var scans []int
	opts := &DecodeOptions{
		Chunk:         256,
		BufferedImage: true,
		OnPass: func(scan int, img *Image) {
			scans = append(scans, scan)
		},
	}
	img, err := DecodeAll(data, opts)
	require.NoError(t, err)
	assert.Len(t, scans, img.Passes)
	assert.LessOrEqual(t, img.Passes, len(script))
	assert.Equal(t, len(script), scans[len(scans)-1])
	for i := 1; i < len(scans); i++ {
		assert.Greater(t, scans[i], scans[i-1])
	}

	final, err := DecodeAll(data, &DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, final.Planes, img.Planes)
}

func TestSequentialModesAgree(t *testing.T) {
	_, _, data := encodeSynthetic(t, 37, 21, 3, false, BaselineScript)
	single, err := DecodeAll(data, &DecodeOptions{})
	require.NoError(t, err)
	multi, err := DecodeAll(data, &DecodeOptions{BufferedImage: true})
	require.NoError(t, err)
	assert.Equal(t, single.Planes, multi.Planes)
	assert.Equal(t, 1, single.Passes)
}

func TestPagedStoreDecode(t *testing.T) {
	_, _, data := encodeSynthetic(t, 48, 96, 3, true, ProgressiveScript)
	want, err := DecodeAll(data, &DecodeOptions{DoBlockSmoothing: true})
	require.NoError(t, err)

	paged := &coef.PagedAllocator{ResidentRows: 1}
	defer paged.Close()
	got, err := DecodeAll(data, &DecodeOptions{DoBlockSmoothing: true, Allocator: paged, Chunk: 100})
	require.NoError(t, err)
	assert.Equal(t, want.Planes, got.Planes)
	assert.Positive(t, paged.Stats().SpilledRows)
}

func TestDecodeErrors(t *testing.T) {
	_, _, data := encodeSynthetic(t, 16, 16, 1, true, ProgressiveScript)

	_, err := DecodeAll(data[:len(data)-10], &DecodeOptions{Chunk: 3})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeAll(data[:5], nil)
	assert.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte("XCF1"), data[4:]...)
	_, err = DecodeAll(bad, nil)
	assert.ErrorIs(t, err, ErrBadMagic)

	marker := bytes.Clone(data)
	marker[frameHeaderSize+componentHeaderSize] = 'Q'
	_, err = DecodeAll(marker, nil)
	assert.ErrorIs(t, err, ErrBadMarker)
}

func TestDecodeMCUSuspendsWithoutSideEffects(t *testing.T) {
	f, _, data := encodeSynthetic(t, 16, 8, 1, false, BaselineScript)
	d := NewDecoder()
	d.Feed(data)
	_, ok, err := d.ReadFrame()
	require.NoError(t, err)
	require.True(t, ok)
	scan, st, err := d.ReadScanHeader()
	require.NoError(t, err)
	require.Equal(t, coef.ReachedSOS, st)
	require.NoError(t, d.StartPass(scan))

	// a fresh decoder fed up to the middle of the first unit
	unitStart := len(data) - d.Buffered()
	partial := NewDecoder()
	partial.Feed(data[:unitStart+100])
	_, _, err = partial.ReadFrame()
	require.NoError(t, err)
	_, _, err = partial.ReadScanHeader()
	require.NoError(t, err)
	require.NoError(t, partial.StartPass(scan))

	var b coef.Block
	b[3] = 77
	before := partial.Buffered()
	assert.False(t, partial.DecodeMCU([]*coef.Block{&b}))
	assert.Equal(t, int16(77), b[3])
	assert.Equal(t, before, partial.Buffered())

	partial.Feed(data[unitStart+100:])
	assert.True(t, partial.DecodeMCU([]*coef.Block{&b}))
	assert.Equal(t, before+len(data)-unitStart-100-128, partial.Buffered())

	var want coef.Block
	require.True(t, d.DecodeMCU([]*coef.Block{&want}))
	assert.Equal(t, want, b)
	assert.Equal(t, 2, f.Components[0].WidthInBlocks)
}
