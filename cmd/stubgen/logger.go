// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger creates the command's structured logger on w. When w is a
// terminal, uses slog.TextHandler for human-readable output; otherwise
// (build systems, CI, tests) uses slog.JSONHandler so log lines can be
// collected alongside the rest of the build's output.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
