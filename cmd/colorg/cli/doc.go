// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command tree behind the colorg binary: nested
// [Command] values dispatched by name, pflag flag sets, generated help,
// and "did you mean" suggestions for mistyped commands and flags.
package cli
