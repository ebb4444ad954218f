// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError ends the process with Code and no further message. A
// command returns it when it has already printed its outcome and a
// non-zero status is a result, not a failure (check with no matching
// rule, for example).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode is the status the process should exit with.
func (e *ExitError) ExitCode() int {
	return e.Code
}
