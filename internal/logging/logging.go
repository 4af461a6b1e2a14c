// Package logging builds the logr.Logger used across the reconciler from a
// log/slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New.
type Options struct {
	// Level is a slog level name: debug, info, warn or error.
	Level  string
	Format string
	Source bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New creates a logger backed by a slog text or JSON handler. The auto
// format selects text when the writer is a terminal and JSON otherwise.
func New(opts Options) (logr.Logger, error) {
	var level slog.Level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return logr.Discard(), fmt.Errorf("failed to parse log level: %w", err)
		}
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		AddSource: opts.Source,
		Level:     level,
	}

	var handler slog.Handler
	switch format := resolveFormat(opts.Format, w); format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return logr.Discard(), fmt.Errorf("unknown log format '%s'", format)
	}

	return logr.FromSlogHandler(handler), nil
}

func resolveFormat(format string, w io.Writer) string {
	if format != "" && format != FormatAuto {
		return format
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(f.Fd()) {
		return FormatText
	}
	return FormatJSON
}
