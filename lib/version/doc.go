// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the colorg build.
//
// Release builds inject the variables with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/colorg/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/colorg
//
// A plain go build leaves them unset; the commit then comes from the
// VCS stamp the toolchain embeds in the binary, when there is one.
package version
