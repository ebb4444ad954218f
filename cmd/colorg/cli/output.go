// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// WriteJSON writes value as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// NewLogger returns a text logger when stderr is a terminal and a JSON
// logger otherwise, so a daemon started by a supervisor logs in a
// machine-readable form.
func NewLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(os.Stderr) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
