// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// testTree builds "colorg notify focus" with a --socket flag and
// records what ran.
func testTree(output *bytes.Buffer) (*Command, *[]string, *string) {
	var ran []string
	var socketPath string
	focus := &Command{
		Name:    "focus",
		Summary: "Report that the editor window gained focus",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("focus", pflag.ContinueOnError)
			flagSet.StringVar(&socketPath, "socket", "/tmp/colorg.sock", "control socket path")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			ran = append(ran, "focus "+strings.Join(args, " "))
			return nil
		},
	}
	root := &Command{
		Name:   "colorg",
		Output: output,
		Subcommands: []*Command{
			{Name: "notify", Summary: "Deliver an editor event", Subcommands: []*Command{focus}},
			{Name: "status", Summary: "Show daemon state", Run: func(ctx context.Context, args []string) error {
				ran = append(ran, "status")
				return nil
			}},
		},
	}
	return root, &ran, &socketPath
}

func TestExecute_Dispatch(t *testing.T) {
	var output bytes.Buffer
	root, ran, socketPath := testTree(&output)

	if err := root.Execute(context.Background(), []string{"notify", "focus", "--socket", "/run/c.sock", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(*ran) != 1 || (*ran)[0] != "focus extra" {
		t.Errorf("ran = %v", *ran)
	}
	if *socketPath != "/run/c.sock" {
		t.Errorf("socket = %s", *socketPath)
	}
}

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	var output bytes.Buffer
	root, _, _ := testTree(&output)

	err := root.Execute(context.Background(), []string{"stauts"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "status"`) {
		t.Errorf("error = %v, expected a suggestion for status", err)
	}
}

func TestExecute_UnknownFlagSuggests(t *testing.T) {
	var output bytes.Buffer
	root, ran, _ := testTree(&output)

	err := root.Execute(context.Background(), []string{"notify", "focus", "--sockt", "/x"})
	if err == nil || !strings.Contains(err.Error(), "did you mean --socket") {
		t.Errorf("error = %v, expected a suggestion for --socket", err)
	}
	if len(*ran) != 0 {
		t.Errorf("command ran despite a flag error: %v", *ran)
	}
}

func TestExecute_SubcommandRequired(t *testing.T) {
	var output bytes.Buffer
	root, _, _ := testTree(&output)

	if err := root.Execute(context.Background(), []string{"notify"}); err == nil {
		t.Error("group command without a subcommand succeeded")
	}
	if !strings.Contains(output.String(), "colorg notify <command> [flags]") {
		t.Errorf("help not printed:\n%s", output.String())
	}
}

func TestPrintHelp(t *testing.T) {
	var output bytes.Buffer
	root, _, _ := testTree(&output)

	if err := root.Execute(context.Background(), []string{"notify", "focus", "--help"}); err != nil {
		t.Fatalf("Execute --help: %v", err)
	}
	help := output.String()
	for _, fragment := range []string{"Usage:\n  colorg notify focus [flags]", "--socket", "control socket path"} {
		if !strings.Contains(help, fragment) {
			t.Errorf("help missing %q:\n%s", fragment, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		distance int
	}{
		{"", "abc", 3},
		{"status", "status", 0},
		{"stauts", "status", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.distance {
			t.Errorf("levenshtein(%q, %q) = %d, expected %d", test.a, test.b, got, test.distance)
		}
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 2}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 2 {
		t.Errorf("ExitError does not expose its code: %v", err)
	}
}
