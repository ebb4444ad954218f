// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/colorg/lib/colorg"
	"github.com/bureau-foundation/colorg/lib/config"
	"github.com/bureau-foundation/colorg/lib/hostsettings"
	"github.com/bureau-foundation/colorg/lib/orgsource"
)

// configFlags are the flags that locate or override the daemon
// configuration. Non-empty flag values win over the file.
type configFlags struct {
	configPath   string
	workspace    string
	userSettings string
	socketPath   string
	defaultScope string
	logLevel     string
}

func (f *configFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVarP(&f.workspace, "workspace", "w", "", "project root to search for the org config")
	flagSet.StringVar(&f.userSettings, "user-settings", "", "editor user settings.json")
	flagSet.StringVar(&f.socketPath, "socket", "", "control socket path")
	flagSet.StringVar(&f.defaultScope, "default-scope", "", "scope used when settingsScope is unset: user or workspace")
	flagSet.StringVar(&f.logLevel, "log-level", "", "debug, info, warn, or error")
}

// registerSocket adds only the flags a control client needs.
func (f *configFlags) registerSocket(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&f.socketPath, "socket", "", "control socket path")
}

// load reads the config file and applies flag overrides.
func (f *configFlags) load() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if f.configPath != "" {
		loaded, err = config.LoadFile(f.configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	for _, override := range []struct {
		value  string
		target *string
	}{
		{f.workspace, &loaded.Workspace},
		{f.userSettings, &loaded.UserSettings},
		{f.socketPath, &loaded.SocketPath},
		{f.defaultScope, &loaded.DefaultScope},
		{f.logLevel, &loaded.LogLevel},
	} {
		if override.value != "" {
			*override.target = override.value
		}
	}

	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, nil
}

// components are the pieces shared by run and check.
type components struct {
	workspace string
	store     *hostsettings.FileStore
	pipeline  *colorg.Pipeline
}

// assemble builds the settings store and pipeline for a validated
// config.
func assemble(loaded *config.Config, logger *slog.Logger) (*components, error) {
	workspace, err := filepath.Abs(loaded.Workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace: %w", err)
	}
	scope, err := loaded.Scope()
	if err != nil {
		return nil, err
	}

	loaded.Workspace = workspace

	store := hostsettings.NewFileStore(loaded.UserSettings, loaded.WorkspaceSettings(), scope)
	writer := colorg.NewWriter(store, logger)
	return &components{
		workspace: workspace,
		store:     store,
		pipeline:  colorg.NewPipeline(orgsource.NewLocator(workspace), store, writer, logger),
	}, nil
}
