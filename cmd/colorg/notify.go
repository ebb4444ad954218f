// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/control"
)

// notifyTimeout bounds one round trip to the daemon. Editor hooks call
// notify synchronously and must not hang when the daemon is wedged.
const notifyTimeout = 10 * time.Second

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:    "notify",
		Summary: "Deliver an editor event to the running daemon",
		Description: `Deliver an editor event to the running daemon. Editor integrations call
these from their focus and active-editor hooks.`,
		Subcommands: []*cli.Command{
			notifySubcommand("focus", "The editor window gained focus", "", 0,
				func(args []string) (string, map[string]any, error) {
					return control.ActionFocus, map[string]any{"focused": true}, nil
				}),
			notifySubcommand("blur", "The editor window lost focus", "", 0,
				func(args []string) (string, map[string]any, error) {
					return control.ActionFocus, map[string]any{"focused": false}, nil
				}),
			notifySubcommand("editor", "A file became the active editor", "colorg notify editor <path> [flags]", 1,
				func(args []string) (string, map[string]any, error) {
					path, err := filepath.Abs(args[0])
					if err != nil {
						return "", nil, err
					}
					return control.ActionEditor, map[string]any{"path": path}, nil
				}),
			notifySubcommand("resolve", "Re-resolve and reapply the colors now", "", 0,
				func(args []string) (string, map[string]any, error) {
					return control.ActionResolve, nil, nil
				}),
		},
	}
}

// notifySubcommand builds one fire-and-wait event command taking
// exactly arity positional arguments.
func notifySubcommand(name, summary, usage string, arity int, request func(args []string) (string, map[string]any, error)) *cli.Command {
	var flags configFlags
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flags.registerSocket(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != arity {
				return fmt.Errorf("%s takes %d argument(s), got %d", name, arity, len(args))
			}
			action, fields, err := request(args)
			if err != nil {
				return err
			}
			loaded, err := flags.load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			return control.NewClient(loaded.SocketPath).Call(ctx, action, fields, nil)
		},
	}
}
