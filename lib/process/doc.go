// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint's last step: turning the error
// returned by run() into an exit status. It is the one place outside
// the CLI that writes to stderr directly, because the structured
// logger may not exist yet when configuration fails.
package process
