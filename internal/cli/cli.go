package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/benoitkugler/lasersvg/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Invocation is a parsed command line.
type Invocation struct {
	Command string
	Args    []string
	Config  *config.Config
}

// commands maps each command to its accepted number of arguments.
var commands = map[string][2]int{
	"model":     {1, 2},
	"svg":       {2, 2},
	"roundtrip": {2, 2},
	"preview":   {2, 2},
}

const usage = `
lasersvg - convert between SVG files and laser cutting models.

Usage:
  lasersvg [options] <command> [arguments]

Commands:
  model     <in.svg> [out.json]         parse an SVG file and print or write its model
  svg       <in.json> <out.svg>         serialize a JSON model to SVG
  roundtrip <in.svg> <out.svg>          parse an SVG file and serialize it back
  preview   <in.svg|in.json> <out.png>  render a model to PNG

Options:
`

// Parse processes command-line arguments. It returns the invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("lasersvg", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an HCL configuration file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	indentFlag := flagSet.Int("indent", 2, "Indentation of the JSON output. 0 for compact output.")
	errorModeFlag := flagSet.String("error-mode", "warn", "Handling of unsupported SVG elements. Options: 'ignore', 'warn', 'strict'.")
	backfillFlag := flagSet.Bool("backfill-names", false, "Copy the id of unnamed groups into their data-name attribute.")
	combineFlag := flagSet.Bool("combine", true, "Merge the paths sharing end points when writing SVG.")
	widthFlag := flagSet.Int("width", 800, "Width of the preview image, in pixels.")
	heightFlag := flagSet.Int("height", 0, "Height of the preview image, in pixels. 0 keeps the aspect ratio.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		cfg, err = config.Load(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		slog.Debug("Configuration file loaded.", "path", *configFlag)
	}

	// explicit flags override the file
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-format":
			cfg.Log.Format = *logFormatFlag
		case "log-level":
			cfg.Log.Level = *logLevelFlag
		case "indent":
			cfg.Indent = *indentFlag
		case "error-mode":
			cfg.ErrorMode = *errorModeFlag
		case "backfill-names":
			cfg.BackfillNames = *backfillFlag
		case "combine":
			cfg.Combine = *combineFlag
		case "width":
			cfg.Preview.Width = *widthFlag
		case "height":
			cfg.Preview.Height = *heightFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	command, rest := strings.ToLower(flagSet.Arg(0)), flagSet.Args()[1:]
	arity, ok := commands[command]
	if !ok {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", flagSet.Arg(0))}
	}
	if len(rest) < arity[0] || len(rest) > arity[1] {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("wrong number of arguments for %s: got %d", command, len(rest))}
	}

	inv := &Invocation{Command: command, Args: rest, Config: cfg}
	slog.Debug("CLI parser finished successfully.", "command", command, "args", rest)
	return inv, false, nil
}
