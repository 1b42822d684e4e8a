// Package testutil holds shared helpers for the package test suites.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger builds a debug-level slog.Logger whose output lands in
// the test's log buffer, so it shows up under -v or on failure instead
// of polluting stdout.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(slog.NewTextHandler(&tbWriter{tb: tb}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// tbWriter forwards handler output to testing.TB, one line per record.
type tbWriter struct {
	tb testing.TB
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Logf("%s", bytes.TrimRight(p, "\n"))
	return len(p), nil
}
