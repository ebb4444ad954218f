// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit terminates the process for err. A nil err returns normally. An
// error carrying an ExitCode method exits with that code silently: the
// command has already reported its outcome. Anything else prints
// "error: err" and exits 1.
func Exit(err error) {
	if err == nil {
		return
	}
	os.Exit(report(os.Stderr, err))
}

// report writes what Exit prints and returns the exit status.
func report(w io.Writer, err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
