// Package logging configures the engine's structured logger: JSON in
// non-TTY contexts (files, pipes, CI), human-readable text when
// stderr is an interactive terminal.
package logging

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Setup builds the process-wide slog.Logger. verbose lowers the
// minimum level to Debug; otherwise Info.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
