package cli

import (
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/benoitkugler/lasersvg/internal/config"
)

// NewLogger builds the logger described by the log block of the
// configuration: a text or JSON handler writing to outW.
func NewLogger(cfg config.Log, outW io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(outW, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(outW, handlerOpts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", cfg.Format)
}

// InstallLogger makes logger the default one. The geometry package reports
// unsupported elements with the standard log package: these lines are
// routed to logger too, as warnings tagged with component=svgpath.
func InstallLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
	handler := logger.Handler().WithAttrs([]slog.Attr{slog.String("component", "svgpath")})
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(handler, slog.LevelWarn).Writer())
}
