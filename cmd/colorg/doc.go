// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Colorg keeps the editor's status bar and activity bar colored after
// the Salesforce org the open project targets.
//
// "colorg run" is the long-lived daemon. It watches the project's org
// config files and the editor settings files, rewrites the four colors
// it owns in workbench.colorCustomizations whenever the answer
// changes, and clears them again on shutdown. Window focus and
// active-editor changes, which no file records, arrive over the control
// socket via "colorg notify".
//
// "colorg check" evaluates the same pipeline once without writing
// anything, and "colorg status" asks a running daemon what it applied.
package main
