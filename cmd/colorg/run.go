// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/colorg"
	"github.com/bureau-foundation/colorg/lib/control"
	"github.com/bureau-foundation/colorg/lib/version"
	"github.com/bureau-foundation/colorg/lib/watch"
)

func runCommand() *cli.Command {
	var flags configFlags
	return &cli.Command{
		Name:    "run",
		Summary: "Run the coloring daemon for a workspace",
		Description: `Run the coloring daemon. On start it clears any colors left by a previous
run, applies the colors for the current org, and then follows changes to
the org config files and the editor settings until SIGINT or SIGTERM,
when it clears the colors again.`,
		Examples: []cli.Example{
			{Description: "Color the project in the current directory", Command: "colorg run"},
			{Description: "Use a config file", Command: "colorg run --config ~/.config/colorg.yaml --log-level debug"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runDaemon(ctx, &flags)
		},
	}
}

func runDaemon(ctx context.Context, flags *configFlags) error {
	loaded, err := flags.load()
	if err != nil {
		return err
	}
	level, err := loaded.Level()
	if err != nil {
		return err
	}
	logger := cli.NewLogger(level)

	parts, err := assemble(loaded, logger)
	if err != nil {
		return err
	}

	coordinator := colorg.NewCoordinator(colorg.CoordinatorConfig{
		Pipeline:      parts.pipeline,
		SettingsPaths: parts.store.Paths(),
		NewWatchSet: func() (colorg.WatchSet, error) {
			watcher, err := watch.New(logger)
			if err != nil {
				return nil, err
			}
			return watcher, nil
		},
		Logger: logger,
	})

	server := control.NewServer(loaded.SocketPath, logger)
	control.Register(server, coordinator)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("colorg starting",
		"version", version.Info(),
		"workspace", parts.workspace,
		"socket", loaded.SocketPath,
	)

	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()
	served := make(chan error, 1)
	go func() { served <- server.Serve(serveCtx) }()

	// The coordinator owns the colors: it runs until the signal and
	// clears on the way out. A socket failure only loses the notify
	// channel, so it is logged and the daemon keeps coloring.
	coordinated := make(chan error, 1)
	go func() { coordinated <- coordinator.Run(ctx) }()

	var serveErr error
	select {
	case serveErr = <-served:
		if serveErr != nil {
			logger.Error("control socket stopped", "error", serveErr)
		}
		err = <-coordinated
	case err = <-coordinated:
		cancelServe()
		serveErr = <-served
	}

	logger.Info("colorg stopped")
	if err != nil {
		return fmt.Errorf("deactivating: %w", err)
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("control socket: %w", serveErr)
	}
	return nil
}
