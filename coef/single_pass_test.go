package coef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinglePassRowGroups(t *testing.T) {
	f := grayFrame(t, 16, 16, false)
	fx := newFixture(t, f, []*Scan{sequentialScan(0)}, nil)
	fx.entropy.fill = dcFromUnit
	s := fx.session

	ok, err := s.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SinglePass, s.Mode())
	assert.Nil(t, s.CoefArrays())
	assert.Equal(t, 2, s.TotalRowGroups())

	out := s.NewSampleImage()
	st, err := s.ReadRowGroup(out)
	require.NoError(t, err)
	assert.Equal(t, RowCompleted, st)
	require.Len(t, fx.transform.calls, 2)
	assert.Equal(t, int16(1), fx.transform.calls[0].coefs.DC())
	assert.Equal(t, 0, fx.transform.calls[0].outCol)
	assert.Equal(t, int16(2), fx.transform.calls[1].coefs.DC())
	assert.Equal(t, 8, fx.transform.calls[1].outCol)
	assert.Equal(t, byte(1), out[0][0][0])
	assert.Equal(t, byte(2), out[0][7][15])
	assert.Equal(t, 1, s.OutputRowGroup())
	assert.Equal(t, 1, s.InputRowGroup())

	st, err = s.ReadRowGroup(out)
	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, st)
	require.Len(t, fx.transform.calls, 4)
	assert.Equal(t, int16(4), fx.transform.calls[3].coefs.DC())

	done, err := s.FinishDecompress()
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, s.InputComplete())
}

func TestSinglePassSuspendResume(t *testing.T) {
	run := func(t *testing.T, budget int) (*sessionFixture, []SampleImage, []DecodeStatus) {
		f := grayFrame(t, 16, 16, false)
		fx := newFixture(t, f, []*Scan{sequentialScan(0)}, nil)
		fx.entropy.fill = dcFromUnit
		fx.entropy.budget = budget
		ok, err := fx.session.StartDecompress()
		require.NoError(t, err)
		require.True(t, ok)

		var images []SampleImage
		var statuses []DecodeStatus
		out := fx.session.NewSampleImage()
		for len(images) < 2 {
			st, err := fx.session.ReadRowGroup(out)
			require.NoError(t, err)
			statuses = append(statuses, st)
			if st == Suspended {
				fx.entropy.budget = 1
				continue
			}
			cp := fx.session.NewSampleImage()
			for y := range out[0] {
				copy(cp[0][y], out[0][y])
			}
			images = append(images, cp)
		}
		return fx, images, statuses
	}

	whole, wholeImages, wholeStatuses := run(t, -1)
	assert.Equal(t, []DecodeStatus{RowCompleted, ScanCompleted}, wholeStatuses)

	chunked, chunkedImages, chunkedStatuses := run(t, 1)
	assert.Equal(t, []DecodeStatus{
		Suspended, RowCompleted,
		Suspended, Suspended, ScanCompleted,
	}, chunkedStatuses)
	assert.Equal(t, wholeImages, chunkedImages)
	assert.Len(t, chunked.transform.calls, len(whole.transform.calls))
}

func TestSinglePassCursorAtSuspension(t *testing.T) {
	f := grayFrame(t, 16, 16, false)
	fx := newFixture(t, f, []*Scan{sequentialScan(0)}, nil)
	fx.entropy.fill = dcFromUnit
	s := fx.session

	ok, err := s.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)

	fx.entropy.budget = 1
	out := s.NewSampleImage()
	st, err := s.ReadRowGroup(out)
	require.NoError(t, err)
	assert.Equal(t, Suspended, st)
	assert.Equal(t, UnitTraversalState{RowGroup: 0, RowWithinGroup: 0, Column: 1, RowsPerGroup: 1}, s.Cursor())
	assert.Equal(t, 0, s.OutputRowGroup())

	fx.entropy.budget = -1
	st, err = s.ReadRowGroup(out)
	require.NoError(t, err)
	assert.Equal(t, RowCompleted, st)
	require.Len(t, fx.transform.calls, 2)
	assert.Equal(t, int16(2), fx.transform.calls[1].coefs.DC())
}

func TestSinglePassClearsWorkspace(t *testing.T) {
	f := grayFrame(t, 16, 8, false)
	fx := newFixture(t, f, []*Scan{sequentialScan(0)}, nil)
	fx.entropy.fill = func(_ *Scan, _, unit int, blocks []*Block) {
		if unit == 0 {
			blocks[0][5] = 9
		}
	}
	ok, err := fx.session.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)

	st, err := fx.session.ReadRowGroup(fx.session.NewSampleImage())
	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, st)
	require.Len(t, fx.transform.calls, 2)
	assert.Equal(t, int16(9), fx.transform.calls[0].coefs[5])
	assert.True(t, fx.transform.calls[1].coefs.IsZero())
}

func subsampledFrame(t *testing.T, width, height int) *Frame {
	t.Helper()
	f, err := NewFrame(width, height, false, []ComponentInfo{
		{ID: 1, HSamp: 2, VSamp: 2, QuantTable: flatQuant(1)},
		{ID: 2, HSamp: 1, VSamp: 1, QuantTable: flatQuant(1)},
	})
	require.NoError(t, err)
	return f
}

func TestSinglePassSkipsDummyBlocks(t *testing.T) {
	f := subsampledFrame(t, 24, 24)
	fx := newFixture(t, f, []*Scan{sequentialScan(0, 1)}, nil)
	fx.entropy.fill = func(_ *Scan, _, _ int, blocks []*Block) {
		for i, b := range blocks {
			b.SetDC(int16(i + 1))
		}
	}
	s := fx.session
	ok, err := s.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)

	out := s.NewSampleImage()
	for _, want := range []DecodeStatus{RowCompleted, ScanCompleted} {
		st, err := s.ReadRowGroup(out)
		require.NoError(t, err)
		assert.Equal(t, want, st)
	}

	luma := fx.transform.forComponent(0)
	chroma := fx.transform.forComponent(1)
	assert.Len(t, luma, 9)
	assert.Len(t, chroma, 4)
	for _, c := range luma {
		assert.Less(t, c.outCol, f.Components[0].OutputWidth())
		assert.LessOrEqual(t, c.coefs.DC(), int16(4))
	}
	for _, c := range chroma {
		assert.Equal(t, int16(5), c.coefs.DC())
	}
}

func TestSinglePassSkipsUnneededComponents(t *testing.T) {
	f := subsampledFrame(t, 16, 16)
	f.Components[1].Needed = false
	fx := newFixture(t, f, []*Scan{sequentialScan(0, 1)}, nil)
	fx.entropy.fill = func(_ *Scan, _, _ int, blocks []*Block) {
		for i, b := range blocks {
			b.SetDC(int16(i + 1))
		}
	}
	s := fx.session
	ok, err := s.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)

	st, err := s.ReadRowGroup(s.NewSampleImage())
	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, st)
	assert.Empty(t, fx.transform.forComponent(1))

	var dcs []int16
	for _, c := range fx.transform.forComponent(0) {
		dcs = append(dcs, c.coefs.DC())
	}
	assert.Equal(t, []int16{1, 2, 3, 4}, dcs)
}

func TestSinglePassRejectsSecondScan(t *testing.T) {
	f := grayFrame(t, 8, 8, false)
	fx := newFixture(t, f, []*Scan{sequentialScan(0), sequentialScan(0)}, nil)
	s := fx.session
	ok, err := s.StartDecompress()
	require.NoError(t, err)
	require.True(t, ok)

	st, err := s.ReadRowGroup(s.NewSampleImage())
	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, st)

	_, err = s.FinishDecompress()
	assert.True(t, HasCode(err, ErrCodeBadScan))
}
