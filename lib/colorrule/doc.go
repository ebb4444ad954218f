// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package colorrule maps an org identifier to a color pair using an
// ordered list of regular-expression rules.
//
// Rules are authored in editor settings for a JavaScript host, so
// patterns are compiled with ECMAScript semantics (via
// github.com/dlclark/regexp2) rather than Go's RE2 dialect. Lookahead,
// backreferences, and the JavaScript meaning of \d and \w all behave
// the way rule authors expect.
//
// Evaluation is first-match-wins. A rule whose pattern does not compile
// is skipped, never fatal: one broken rule must not blank out every
// rule after it. An empty identifier never matches anything, not even
// a catch-all ".*" rule.
//
// This package depends on no other colorg packages.
package colorrule
