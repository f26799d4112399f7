// Package logging provides the small structured-logging shim the
// dispatcher uses for its few diagnostic lines: a thin wrapper around
// log/slog, injected via a constructor option rather than reached for as a
// global.
package logging

import (
	"io"
	"log/slog"
)

// New returns a slog.Logger writing text-formatted records to w.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

// Discard returns a logger that drops everything, used as the dispatcher's
// default so library consumers opt in to diagnostics via WithLogger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
