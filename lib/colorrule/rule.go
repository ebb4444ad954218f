// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorrule

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single pattern evaluation. ECMAScript patterns
// can backtrack catastrophically; a rule that runs past this is treated
// as a non-match for that rule.
const matchTimeout = 100 * time.Millisecond

// Rule is one entry of the user's ordered rule list.
type Rule struct {
	// Regex is tested against the org identifier.
	Regex string `json:"regex"`

	// Color is the background color applied when Regex matches.
	Color string `json:"color"`

	// ForegroundColor is optional. Empty means the theme default.
	ForegroundColor string `json:"foregroundColor,omitempty"`

	// Malformed is set when the settings entry could not be decoded
	// as a rule. A malformed rule keeps its position in the list but
	// never matches.
	Malformed error `json:"-"`
}

// ColorPair is the resolved output of matching. An empty string is an
// absent color. The zero value means "no org, no color".
type ColorPair struct {
	Background string `json:"background,omitempty"`
	Foreground string `json:"foreground,omitempty"`
}

// IsZero reports whether both colors are absent.
func (p ColorPair) IsZero() bool {
	return p.Background == "" && p.Foreground == ""
}

// Result describes the outcome of evaluating a rule list.
type Result struct {
	// Pair is the matched color pair, or the zero pair.
	Pair ColorPair

	// Index is the position of the matching rule, or -1.
	Index int
}

// Matched reports whether a rule matched.
func (r Result) Matched() bool {
	return r.Index >= 0
}

// RuleError reports a rule that could not be compiled.
type RuleError struct {
	Index int
	Regex string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%q): %v", e.Index, e.Regex, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Matcher is a compiled rule list. Build one with Compile.
type Matcher struct {
	rules    []Rule
	patterns []*regexp2.Regexp
	errors   []*RuleError
}

// Compile prepares rules for matching. It never fails: malformed rules
// and rules whose pattern is invalid are recorded in Errors and skipped
// by Match.
func Compile(rules []Rule) *Matcher {
	matcher := &Matcher{
		rules:    rules,
		patterns: make([]*regexp2.Regexp, len(rules)),
	}
	for index, rule := range rules {
		if rule.Malformed != nil {
			matcher.errors = append(matcher.errors, &RuleError{Index: index, Regex: rule.Regex, Err: rule.Malformed})
			continue
		}
		pattern, err := regexp2.Compile(rule.Regex, regexp2.ECMAScript)
		if err != nil {
			matcher.errors = append(matcher.errors, &RuleError{Index: index, Regex: rule.Regex, Err: err})
			continue
		}
		pattern.MatchTimeout = matchTimeout
		matcher.patterns[index] = pattern
	}
	return matcher
}

// Errors returns the compile errors of the skipped rules, in rule order.
func (m *Matcher) Errors() []*RuleError {
	return m.errors
}

// Match evaluates the rules in order against identifier and returns the
// first hit. An empty identifier returns the zero pair without testing
// any rule.
func (m *Matcher) Match(identifier string) Result {
	if identifier == "" {
		return Result{Index: -1}
	}
	for index, pattern := range m.patterns {
		if pattern == nil {
			continue
		}
		matched, err := pattern.MatchString(identifier)
		if err != nil || !matched {
			continue
		}
		rule := m.rules[index]
		return Result{
			Pair:  pairFor(rule),
			Index: index,
		}
	}
	return Result{Index: -1}
}

// Match compiles rules and evaluates them against identifier.
func Match(identifier string, rules []Rule) Result {
	return Compile(rules).Match(identifier)
}

// pairFor converts a matching rule to its color pair. A rule without a
// background color yields the zero pair: a foreground alone is never
// applied.
func pairFor(rule Rule) ColorPair {
	if rule.Color == "" {
		return ColorPair{}
	}
	return ColorPair{Background: rule.Color, Foreground: rule.ForegroundColor}
}
