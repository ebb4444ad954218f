// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	return root().Execute(context.Background(), os.Args[1:])
}

func root() *cli.Command {
	return &cli.Command{
		Name:    "colorg",
		Summary: "Color the editor by the Salesforce org a project targets",
		Description: `colorg colors the editor's status bar and activity bar according to the
Salesforce org named in a project's .sf/config.json (or the older
.sfdx/sfdx-config.json), using the ordered "sf-colorg.rules" from the
editor settings.`,
		Subcommands: []*cli.Command{
			runCommand(),
			notifyCommand(),
			statusCommand(),
			checkCommand(),
			versionCommand(),
		},
	}
}
