// Package config loads the optional HCL configuration file of the
// lasersvg command. Every attribute and block is optional: missing values
// keep their defaults, and command line flags override the file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/benoitkugler/lasersvg/svgmodel"
	"github.com/benoitkugler/lasersvg/svgpath"
	"github.com/benoitkugler/lasersvg/svgraster"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config holds the settings of one lasersvg run.
type Config struct {
	Indent        int // JSON indentation, 0 for compact output
	ErrorMode     string
	BackfillNames bool
	Combine       bool

	Preview Preview
	Log     Log
}

// Preview controls the PNG rendering.
type Preview struct {
	Width, Height int
	Background    string // empty for a transparent background
	Stroke        string
	StrokeWidth   float64
}

// Log selects the slog handler.
type Log struct {
	Level  string
	Format string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Indent:    2,
		ErrorMode: "warn",
		Combine:   true,
		Preview: Preview{
			Width:       800,
			Background:  "white",
			Stroke:      "black",
			StrokeWidth: 1,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// hclFile mirrors the file layout; pointers distinguish missing values.
type hclFile struct {
	Indent        *int        `hcl:"indent,optional"`
	ErrorMode     *string     `hcl:"error_mode,optional"`
	BackfillNames *bool       `hcl:"backfill_names,optional"`
	Combine       *bool       `hcl:"combine,optional"`
	Preview       *hclPreview `hcl:"preview,block"`
	Log           *hclLog     `hcl:"log,block"`
}

type hclPreview struct {
	Width       *int     `hcl:"width,optional"`
	Height      *int     `hcl:"height,optional"`
	Background  *string  `hcl:"background,optional"`
	Stroke      *string  `hcl:"stroke,optional"`
	StrokeWidth *float64 `hcl:"stroke_width,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Load reads and validates the HCL file `filename`.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes the HCL source `src`, applies it on top of the defaults,
// and validates the result. `filename` is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := Default()
	set(&cfg.Indent, parsed.Indent)
	set(&cfg.ErrorMode, parsed.ErrorMode)
	set(&cfg.BackfillNames, parsed.BackfillNames)
	set(&cfg.Combine, parsed.Combine)
	if p := parsed.Preview; p != nil {
		set(&cfg.Preview.Width, p.Width)
		set(&cfg.Preview.Height, p.Height)
		set(&cfg.Preview.Background, p.Background)
		set(&cfg.Preview.Stroke, p.Stroke)
		set(&cfg.Preview.StrokeWidth, p.StrokeWidth)
	}
	if l := parsed.Log; l != nil {
		set(&cfg.Log.Level, l.Level)
		set(&cfg.Log.Format, l.Format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the values of every setting, and normalizes
// the case of the enumerated ones.
func (c *Config) Validate() error {
	var errs []error
	if c.Indent < 0 {
		errs = append(errs, fmt.Errorf("indent must be positive, got %d", c.Indent))
	}
	c.ErrorMode = strings.ToLower(c.ErrorMode)
	if _, err := svgpath.ParseErrorMode(c.ErrorMode); err != nil {
		errs = append(errs, err)
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, errors.New("invalid log level: must be 'debug', 'info', 'warn', or 'error'"))
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, errors.New("invalid log format: must be 'text' or 'json'"))
	}

	if c.Preview.Width < 0 || c.Preview.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid preview size %dx%d", c.Preview.Width, c.Preview.Height))
	}
	if c.Preview.StrokeWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid preview stroke width %g", c.Preview.StrokeWidth))
	}
	if _, err := parseOptionalColor(c.Preview.Background); err != nil {
		errs = append(errs, fmt.Errorf("preview background: %w", err))
	}
	if _, err := parseOptionalColor(c.Preview.Stroke); err != nil {
		errs = append(errs, fmt.Errorf("preview stroke: %w", err))
	}
	return errors.Join(errs...)
}

func parseOptionalColor(v string) (color.Color, error) {
	if v == "" {
		return nil, nil
	}
	return svgraster.ParseColor(v)
}

// ModelOptions returns the parser and serializer options.
func (c *Config) ModelOptions() ([]svgmodel.Option, error) {
	mode, err := svgpath.ParseErrorMode(c.ErrorMode)
	if err != nil {
		return nil, err
	}
	return []svgmodel.Option{
		svgmodel.WithErrorMode(mode),
		svgmodel.WithNameBackfill(c.BackfillNames),
		svgmodel.WithCombine(c.Combine),
	}, nil
}

// RasterOptions returns the preview settings, with the colors resolved.
func (c *Config) RasterOptions() (svgraster.Options, error) {
	background, err := parseOptionalColor(c.Preview.Background)
	if err != nil {
		return svgraster.Options{}, err
	}
	stroke, err := parseOptionalColor(c.Preview.Stroke)
	if err != nil {
		return svgraster.Options{}, err
	}
	return svgraster.Options{
		Width:       c.Preview.Width,
		Height:      c.Preview.Height,
		Background:  background,
		Stroke:      stroke,
		StrokeWidth: c.Preview.StrokeWidth,
	}, nil
}
