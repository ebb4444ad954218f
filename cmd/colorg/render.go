// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/colorg/lib/control"
)

// swatch renders label on the pair's colors. Without a background the
// label is printed plain; the editor would show its theme colors.
func swatch(label, background, foreground string) string {
	if background == "" {
		return label
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(background)).
		Padding(0, 1)
	if foreground != "" {
		style = style.Foreground(lipgloss.Color(foreground))
	}
	return style.Render(label)
}

// printReport writes the human-readable form of report.
func printReport(w io.Writer, report control.StatusReport) {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "state:\t%s\n", report.State)
	fmt.Fprintf(tw, "workspace:\t%s\n", report.Workspace)
	if report.ConfigPath != "" {
		fmt.Fprintf(tw, "config:\t%s (%s)\n", report.ConfigPath, report.Schema)
	} else {
		fmt.Fprintf(tw, "config:\tnone found\n")
	}
	if report.Org != "" {
		fmt.Fprintf(tw, "org:\t%s\n", report.Org)
	} else {
		fmt.Fprintf(tw, "org:\tnone\n")
	}

	if report.Rule >= 0 {
		fmt.Fprintf(tw, "rule:\t#%d\n", report.Rule)
	} else {
		fmt.Fprintf(tw, "rule:\tno match\n")
	}
	if report.Background != "" {
		colors := report.Background
		if report.Foreground != "" {
			colors += " on " + report.Foreground
		}
		fmt.Fprintf(tw, "colors:\t%s  %s\n", colors, swatch(orgLabel(report.Org), report.Background, report.Foreground))
	}
	if report.Scope != "" {
		fmt.Fprintf(tw, "scope:\t%s\n", report.Scope)
		fmt.Fprintf(tw, "surfaces:\t%s\n", surfaces(report.StatusBar, report.ActivityBar))
	}

	for _, invalid := range report.InvalidRules {
		fmt.Fprintf(tw, "invalid rule:\t%s\n", invalid)
	}
	if len(report.Watched) > 0 {
		fmt.Fprintf(tw, "watching:\t%s\n", strings.Join(report.Watched, ", "))
	}
	if report.LastError != "" {
		fmt.Fprintf(tw, "last error:\t%s\n", report.LastError)
	}
}

func orgLabel(org string) string {
	if org == "" {
		return "colorg"
	}
	return org
}

func surfaces(statusBar, activityBar bool) string {
	var names []string
	if statusBar {
		names = append(names, "statusBar")
	}
	if activityBar {
		names = append(names, "activityBar")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
