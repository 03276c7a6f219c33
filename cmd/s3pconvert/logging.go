package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// newLogger builds the logger handed to the codec. Quiet by default (only
// warnings surface); --verbose drops the level to debug. Output is keyed
// text on an interactive stderr, JSON otherwise.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
