package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolution:\n  x: 120\n  y: 60\n"), 0o600))

	cfg := &MainConfig{Config: path}
	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, 120.0, opts.ResolutionX)
	assert.Equal(t, 60.0, opts.ResolutionY)

	cfg.DPI = 72
	opts, err = cfg.options()
	require.NoError(t, err)
	assert.Equal(t, 72.0, opts.ResolutionX)
	assert.Equal(t, 72.0, opts.ResolutionY)

	cfg.DPI = -1
	_, err = cfg.options()
	assert.ErrorIs(t, err, cli.ErrUsage)

	_, err = (&MainConfig{}).open(filepath.Join(t.TempDir(), "missing.pptx"))
	assert.ErrorContains(t, err, "could not open")
}

func TestPrinterColor(t *testing.T) {
	var buf bytes.Buffer
	cfg := &MainConfig{}
	assert.False(t, cfg.useColor(&buf))

	cfg.printer(&buf).Header("slide %d", 1)
	assert.Equal(t, "slide 1\n", buf.String())

	buf.Reset()
	cfg.Color = true
	assert.True(t, cfg.useColor(&buf))
	cfg.printer(&buf).Header("slide %d", 1)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "slide 1")
}
