package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leijurv/jpeg_coef_go/rawstream"
)

func writeStream(t *testing.T, dir, name string, progressive bool) string {
	t.Helper()
	f, err := rawstream.SynthFrame(40, 24, 3, progressive, 3)
	require.NoError(t, err)
	script := rawstream.BaselineScript(f)
	if progressive {
		script = rawstream.ProgressiveScript(f)
	}
	var buf bytes.Buffer
	require.NoError(t, rawstream.Encode(&buf, f, rawstream.Synthesize(f, 7), script))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestVerifyFile(t *testing.T) {
	dir := t.TempDir()

	res := verifyFile(writeStream(t, dir, "baseline.rcf", false))
	assert.True(t, res.ok, res.errMsg)
	assert.Equal(t, 1, res.passes)

	res = verifyFile(writeStream(t, dir, "progressive.rcf", true))
	assert.True(t, res.ok, res.errMsg)
	assert.GreaterOrEqual(t, res.passes, 1)
}

func TestVerifyFileReportsTruncation(t *testing.T) {
	dir := t.TempDir()
	path := writeStream(t, dir, "cut.rcf", true)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o644))

	res := verifyFile(path)
	assert.False(t, res.ok)
	assert.Contains(t, res.errMsg, "whole")
}

func TestVerifyFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeStream(t, dir, "a.rcf", false),
		writeStream(t, dir, "b.rcf", true),
	}
	assert.True(t, verifyFiles(files, 2, false))
	assert.False(t, verifyFiles(append(files, filepath.Join(dir, "missing.rcf")), 2, false))
}

func TestWriteTIFF(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(writeStream(t, dir, "in.rcf", false))
	require.NoError(t, err)
	img, err := rawstream.DecodeAll(data, nil)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.tiff")
	require.NoError(t, writeTIFF(out, img, 1))
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
	assert.Error(t, writeTIFF(out, img, 3))
	assert.Len(t, digest(img), 64)
}
