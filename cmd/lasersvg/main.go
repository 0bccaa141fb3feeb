package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/benoitkugler/lasersvg/internal/cli"
)

// main is the entrypoint for the lasersvg command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses the arguments and executes the command. Results go
// to outW, logs to logW.
func run(outW, logW io.Writer, args []string) error {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger, err := cli.NewLogger(inv.Config.Log, logW)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	cli.InstallLogger(logger)

	if err := execute(logger, outW, inv); err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	return nil
}
