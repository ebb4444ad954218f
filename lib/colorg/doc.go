// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package colorg decides and applies the editor colors for a
// workspace's Salesforce org.
//
// [Writer] merges a color pair into workbench.colorCustomizations. It
// owns four keys (status bar and activity bar, background and
// foreground) and never touches any other key. [Pipeline] chains the
// stages: locate the org config, extract the org, match the rules,
// write. Every absence along the way (no file, no org field, no
// matching rule) ends in the same place: the owned keys are removed.
//
// [Coordinator] is the event loop around the pipeline. It activates
// once (clearing leftovers from an earlier run, watching files,
// resolving), then turns each trigger into a resolve, a clear, or
// nothing, and clears everything on deactivation. All triggers run on
// one goroutine, so two resolutions never interleave their writes.
package colorg
