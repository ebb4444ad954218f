// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the colorg daemon's YAML configuration.
//
// The file is named by the --config flag (via [LoadFile]) or the
// COLORG_CONFIG environment variable (via [Load]). Without either, the
// daemon runs on [Default]. There is no search path: a config that is
// not named explicitly is never read.
//
// Path fields support ${VAR} and ${VAR:-default} expansion after
// loading, so one file can serve several machines:
//
//	workspace: ${HOME}/src/billing
//	socket_path: ${XDG_RUNTIME_DIR:-/tmp}/colorg.sock
//
// Command-line flags override file values; that merge happens in the
// command, not here.
package config
