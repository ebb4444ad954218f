// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the largest edit distance still worth
// suggesting.
const maxSuggestionDistance = 3

func suggestCommand(unknown string, commands []*Command) string {
	var names []string
	for _, command := range commands {
		names = append(names, command.Name)
	}
	return closest(unknown, names)
}

// suggestFlag finds the first long flag in args that flagSet does not
// define and returns the closest defined name, prefixed with "--".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		defined = append(defined, flag.Name)
	})

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if flagSet.Lookup(name) != nil {
			continue
		}
		if suggestion := closest(name, defined); suggestion != "" {
			return "--" + suggestion
		}
		return ""
	}
	return ""
}

func closest(unknown string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		if distance := levenshtein(unknown, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein is the edit distance between a and b, computed one row
// at a time.
func levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(b); j++ {
		diagonal := row[0]
		row[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			above := row[i]
			row[i] = min(row[i]+1, row[i-1]+1, diagonal+cost)
			diagonal = above
		}
	}
	return row[len(a)]
}
