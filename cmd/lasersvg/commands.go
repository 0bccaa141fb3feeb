package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/lasersvg/internal/cli"
	"github.com/benoitkugler/lasersvg/svgmodel"
	"github.com/benoitkugler/lasersvg/svgraster"
)

type command func(logger *slog.Logger, outW io.Writer, inv *cli.Invocation, opts []svgmodel.Option) error

var commandFuncs = map[string]command{
	"model":     modelCmd,
	"svg":       svgCmd,
	"roundtrip": roundtripCmd,
	"preview":   previewCmd,
}

func execute(logger *slog.Logger, outW io.Writer, inv *cli.Invocation) error {
	cmd, ok := commandFuncs[inv.Command]
	if !ok {
		return fmt.Errorf("unknown command %q", inv.Command)
	}
	opts, err := inv.Config.ModelOptions()
	if err != nil {
		return err
	}
	logger.Debug("Running command.", "command", inv.Command, "args", inv.Args)
	return cmd(logger, outW, inv, opts)
}

// modelCmd parses an SVG file and writes its JSON model,
// to the given file or to outW.
func modelCmd(logger *slog.Logger, outW io.Writer, inv *cli.Invocation, opts []svgmodel.Option) error {
	model, err := svgmodel.ParseFile(inv.Args[0], opts...)
	if err != nil {
		return err
	}
	logger.Debug("SVG file parsed.", "path", inv.Args[0], "groups", model.Tree.Len())

	if len(inv.Args) == 1 {
		text, err := svgmodel.EncodeText(model, inv.Config.Indent)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(outW, "%s\n", text)
		return err
	}
	if err := svgmodel.WriteTextFile(model, inv.Args[1], inv.Config.Indent); err != nil {
		return err
	}
	logger.Info("Model written.", "path", inv.Args[1])
	return nil
}

func svgCmd(logger *slog.Logger, _ io.Writer, inv *cli.Invocation, opts []svgmodel.Option) error {
	model, err := svgmodel.ReadTextFile(inv.Args[0])
	if err != nil {
		return err
	}
	logger.Debug("Model loaded.", "path", inv.Args[0])
	if err := svgmodel.WriteDocumentFile(model, inv.Args[1], opts...); err != nil {
		return err
	}
	logger.Info("SVG file written.", "path", inv.Args[1])
	return nil
}

func roundtripCmd(logger *slog.Logger, _ io.Writer, inv *cli.Invocation, opts []svgmodel.Option) error {
	model, err := svgmodel.ParseFile(inv.Args[0], opts...)
	if err != nil {
		return err
	}
	logger.Debug("SVG file parsed.", "path", inv.Args[0])
	if err := svgmodel.WriteDocumentFile(model, inv.Args[1], opts...); err != nil {
		return err
	}
	logger.Info("SVG file written.", "path", inv.Args[1])
	return nil
}

// loadModel accepts both SVG files and JSON models,
// depending on the extension.
func loadModel(filename string, opts []svgmodel.Option) (*svgmodel.Model, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return svgmodel.ReadTextFile(filename)
	}
	return svgmodel.ParseFile(filename, opts...)
}

func previewCmd(logger *slog.Logger, _ io.Writer, inv *cli.Invocation, opts []svgmodel.Option) error {
	model, err := loadModel(inv.Args[0], opts)
	if err != nil {
		return err
	}
	rasterOpts, err := inv.Config.RasterOptions()
	if err != nil {
		return err
	}
	img, err := svgraster.RasterModel(model, rasterOpts)
	if err != nil {
		return err
	}
	logger.Debug("Model rendered.", "bounds", img.Bounds().String())
	if err := svgraster.WritePNGFile(inv.Args[1], img); err != nil {
		return err
	}
	logger.Info("Preview written.", "path", inv.Args[1])
	return nil
}
