// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for colorg packages.
//
// [RequireReceive] and [RequireNoReceive] encapsulate
// the timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. Watcher
// and coordinator tests deliver events from real goroutines, so these
// are the only place real wall-clock timeouts appear in the suite.
//
// [WriteFile] creates a file and any missing parent directories inside
// a test fixture tree.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no colorg-internal dependencies.
package testutil
