// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/colorg"
	"github.com/bureau-foundation/colorg/lib/config"
	"github.com/bureau-foundation/colorg/lib/control"
)

func checkCommand() *cli.Command {
	var flags configFlags
	var outputJSON bool
	return &cli.Command{
		Name:    "check",
		Summary: "Show which colors a workspace would get, without writing",
		Description: `Evaluate the workspace once: locate the org config, read the org, and
match it against the rules. Nothing is written and no daemon is needed.

Exits 0 when a rule supplies a color, 1 when none would be applied.`,
		Examples: []cli.Example{
			{Description: "Try a rule change before saving it", Command: "colorg check --workspace ~/src/billing"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			loaded, err := flags.load()
			if err != nil {
				return err
			}
			level, err := loaded.Level()
			if err != nil {
				return err
			}
			return check(ctx, loaded, os.Stdout, outputJSON, cli.NewLogger(level))
		},
	}
}

// check evaluates and prints. It is separate from the command so tests
// can capture the output.
func check(ctx context.Context, loaded *config.Config, w io.Writer, outputJSON bool, logger *slog.Logger) error {
	parts, err := assemble(loaded, logger)
	if err != nil {
		return err
	}
	resolution, err := parts.pipeline.Evaluate(ctx)
	if err != nil {
		return err
	}

	report := control.NewStatusReport(colorg.Status{
		State:      colorg.StateInactive,
		Workspace:  parts.workspace,
		Resolution: &resolution,
	})
	report.State = "check"

	if outputJSON {
		if err := cli.WriteJSON(w, report); err != nil {
			return err
		}
	} else {
		printReport(w, report)
	}

	if report.Background == "" {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
