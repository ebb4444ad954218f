// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/control"
)

func statusCommand() *cli.Command {
	var flags configFlags
	var outputJSON bool
	return &cli.Command{
		Name:    "status",
		Summary: "Show what the running daemon resolved and applied",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.registerSocket(flagSet)
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

			ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			var report control.StatusReport
			if err := control.NewClient(loaded.SocketPath).Call(ctx, control.ActionStatus, nil, &report); err != nil {
				return err
			}

			if outputJSON {
				return cli.WriteJSON(os.Stdout, report)
			}
			printReport(os.Stdout, report)
			return nil
		},
	}
}
