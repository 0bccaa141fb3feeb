package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(""), "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	opts, err := cfg.ModelOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestParse_Full(t *testing.T) {
	t.Parallel()

	src := `
indent         = 4
error_mode     = "STRICT"
backfill_names = true
combine        = false

preview {
  width        = 200
  height       = 100
  background   = ""
  stroke       = "#ff0000"
  stroke_width = 2.5
}

log {
  level  = "debug"
  format = "json"
}
`
	cfg, err := Parse([]byte(src), "lasersvg.hcl")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, "strict", cfg.ErrorMode)
	assert.True(t, cfg.BackfillNames)
	assert.False(t, cfg.Combine)
	assert.Equal(t, Preview{Width: 200, Height: 100, Stroke: "#ff0000", StrokeWidth: 2.5}, cfg.Preview)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)

	ro, err := cfg.RasterOptions()
	require.NoError(t, err)
	assert.Nil(t, ro.Background)
	assert.Equal(t, color.NRGBA{0xff, 0, 0, 0xff}, ro.Stroke)
	assert.Equal(t, 200, ro.Width)
	assert.Equal(t, 2.5, ro.StrokeWidth)
}

func TestParse_PartialBlocks(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("preview {\n  height = 300\n}\n"), "partial.hcl")
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Preview.Height)
	assert.Equal(t, 800, cfg.Preview.Width, "missing attributes keep their default")
	assert.Equal(t, "info", cfg.Log.Level)

	ro, err := cfg.RasterOptions()
	require.NoError(t, err)
	assert.Equal(t, colornames.White, ro.Background)
	assert.Equal(t, colornames.Black, ro.Stroke)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src      string
		contains string
	}{
		{"syntax", "indent = ", "failed to parse"},
		{"unknown attribute", "colour = 1", "failed to decode"},
		{"wrong type", `combine = "maybe"`, "failed to decode"},
		{"negative indent", "indent = -1", "indent must be positive"},
		{"error mode", `error_mode = "loud"`, "invalid error mode"},
		{"log level", "log {\n level = \"trace\"\n}", "invalid log level"},
		{"log format", "log {\n format = \"xml\"\n}", "invalid log format"},
		{"preview size", "preview {\n width = -3\n}", "invalid preview size"},
		{"preview color", "preview {\n stroke = \"blurple\"\n}", "preview stroke"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "lasersvg.hcl")
	require.NoError(t, os.WriteFile(filename, []byte("indent = 0\n"), 0o600))

	cfg, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Indent)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
