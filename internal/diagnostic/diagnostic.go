// Package diagnostic provides the package-wide structured logger used for
// the non-fatal diagnostics of package jsondom (numeric-comparison failures,
// aborted parses), alongside the errors it returns. Handler construction is grounded on MacroPower-x's
// log/log.go: a small Format enum selecting between a JSON and a text
// log/slog.Handler.
package diagnostic

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Format selects the slog.Handler construction used by NewLogger.
type Format string

const (
	FormatJSON    Format = "json"
	FormatLogfmt  Format = "logfmt"
	FormatDiscard Format = "discard"
)

// NewLogger builds a *slog.Logger writing to w in the given format.
func NewLogger(w io.Writer, level slog.Level, format Format) *slog.Logger {
	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case FormatDiscard:
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

var current atomic.Pointer[slog.Logger]

func init() {
	// Quiet by default: a library should not write to stderr unless the
	// embedding application opts in via SetLogger.
	current.Store(NewLogger(os.Stderr, slog.LevelWarn, FormatDiscard))
}

// SetLogger installs l as the logger used by package jsondom for non-fatal
// diagnostics. Safe to call
// concurrently with Logger().
func SetLogger(l *slog.Logger) {
	current.Store(l)
}

// Logger returns the currently installed diagnostic logger.
func Logger() *slog.Logger {
	return current.Load()
}
