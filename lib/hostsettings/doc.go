// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostsettings reads and writes the editor's settings files.
//
// The editor keeps settings at two persistence scopes: a per-user file
// and a per-workspace file (.vscode/settings.json). Both are JSONC:
// JSON extended with comments and trailing commas. This package
// provides:
//
//   - [Scope] and [ResolveScope], mapping the settingsScope option to a
//     scope.
//   - [Options], colorg's own settings (rules and surface toggles),
//     merged from both files with workspace values winning.
//   - [Store], the narrow read/write contract for the
//     workbench.colorCustomizations object, and [FileStore], its
//     file-backed implementation.
//
// The editor owns these files. FileStore only ever replaces the
// workbench.colorCustomizations value and carries every other
// top-level setting through as raw JSON. Comments in a file that is
// rewritten are not preserved.
package hostsettings
