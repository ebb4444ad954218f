// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/colorg/cmd/colorg/cli"
	"github.com/bureau-foundation/colorg/lib/config"
	"github.com/bureau-foundation/colorg/lib/control"
	"github.com/bureau-foundation/colorg/lib/testutil"
)

const userSettings = `{
    // user settings
    "editor.fontSize": 13,
    "sf-colorg.rules": [
        {"regex": "^prod-", "color": "#ff0000", "foregroundColor": "#ffffff"},
        {"regex": "sandbox", "color": "#00aa00"}
    ],
    "sf-colorg.target.settingsScope": "user",
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	workspace := t.TempDir()
	settingsDir := t.TempDir()
	return &config.Config{
		Workspace:    workspace,
		UserSettings: testutil.WriteFile(t, settingsDir, "settings.json", userSettings),
		SocketPath:   filepath.Join(settingsDir, "colorg.sock"),
		DefaultScope: "workspace",
		LogLevel:     "error",
	}, workspace
}

func TestCheck_Match(t *testing.T) {
	loaded, workspace := testConfig(t)
	testutil.WriteFile(t, workspace, ".sf/config.json", `{"target-org": "prod-eu"}`)

	var output bytes.Buffer
	if err := check(context.Background(), loaded, &output, true, testLogger()); err != nil {
		t.Fatalf("check: %v", err)
	}

	var report control.StatusReport
	if err := json.Unmarshal(output.Bytes(), &report); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, output.String())
	}
	if report.Org != "prod-eu" || report.Rule != 0 || report.Background != "#ff0000" || report.Foreground != "#ffffff" {
		t.Errorf("report = %+v", report)
	}
	if report.Scope != "user" || report.Schema != "sf" {
		t.Errorf("report = %+v", report)
	}

	// check never writes.
	settings := testutil.ReadFile(t, loaded.UserSettings)
	if strings.Contains(settings, "colorCustomizations") {
		t.Errorf("check wrote settings:\n%s", settings)
	}
	if _, err := os.Stat(filepath.Join(workspace, ".vscode")); !os.IsNotExist(err) {
		t.Errorf("check created workspace settings: %v", err)
	}
}

func TestCheck_NoMatchExitsOne(t *testing.T) {
	loaded, workspace := testConfig(t)
	testutil.WriteFile(t, workspace, ".sfdx/sfdx-config.json", `{"defaultusername": "dev@example.com"}`)

	var output bytes.Buffer
	err := check(context.Background(), loaded, &output, false, testLogger())

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("check error = %v, expected exit code 1", err)
	}
	text := output.String()
	for _, fragment := range []string{"org:", "dev@example.com", "no match", "sfdx"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, text)
		}
	}
}

func TestConfigFlags_OverrideFile(t *testing.T) {
	root := t.TempDir()
	path := testutil.WriteFile(t, root, "colorg.yaml", strings.Join([]string{
		"workspace: /from/file",
		"user_settings: /from/file/settings.json",
		"socket_path: /from/file/colorg.sock",
		"default_scope: user",
	}, "\n"))

	flags := configFlags{configPath: path, workspace: "/from/flag", logLevel: "debug"}
	loaded, err := flags.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Workspace != "/from/flag" || loaded.LogLevel != "debug" {
		t.Errorf("flags did not override: %+v", loaded)
	}
	if loaded.SocketPath != "/from/file/colorg.sock" || loaded.DefaultScope != "user" {
		t.Errorf("file values lost: %+v", loaded)
	}
}

func TestConfigFlags_InvalidScope(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	flags := configFlags{defaultScope: "global"}
	if _, err := flags.load(); err == nil {
		t.Error("load accepted default scope \"global\"")
	}
}

func TestSurfaces(t *testing.T) {
	if got := surfaces(true, false); got != "statusBar" {
		t.Errorf("surfaces(true, false) = %q", got)
	}
	if got := surfaces(false, false); got != "none" {
		t.Errorf("surfaces(false, false) = %q", got)
	}
}

func TestSwatch_PlainWithoutBackground(t *testing.T) {
	if got := swatch("prod", "", "#fff"); got != "prod" {
		t.Errorf("swatch = %q, expected the bare label", got)
	}
}

func TestRoot_HelpListsCommands(t *testing.T) {
	var output bytes.Buffer
	command := root()
	command.Output = &output
	if err := command.Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, name := range []string{"run", "notify", "status", "check", "version"} {
		if !strings.Contains(output.String(), "  "+name) {
			t.Errorf("help does not list %s:\n%s", name, output.String())
		}
	}
}
