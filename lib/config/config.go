// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/colorg/lib/hostsettings"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "COLORG_CONFIG"

// Config is the daemon configuration.
type Config struct {
	// Workspace is the project root searched for the org config file.
	// Default: the current directory.
	Workspace string `yaml:"workspace"`

	// UserSettings is the editor's user settings.json.
	// Default: <user config dir>/Code/User/settings.json
	UserSettings string `yaml:"user_settings"`

	// SocketPath is where the control socket listens.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/colorg.sock
	SocketPath string `yaml:"socket_path"`

	// DefaultScope applies when settingsScope is unset or unrecognized:
	// "user" or "workspace". Default: workspace.
	DefaultScope string `yaml:"default_scope"`

	// LogLevel is debug, info, warn, or error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join("${HOME}", ".config")
	}
	config := &Config{
		Workspace:    ".",
		UserSettings: filepath.Join(configDir, "Code", "User", "settings.json"),
		SocketPath:   "${XDG_RUNTIME_DIR:-/tmp}/colorg.sock",
		DefaultScope: "workspace",
		LogLevel:     "info",
	}
	config.expandVariables()
	return config
}

// Load reads the file named by COLORG_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. Fields the file omits keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	config.expandVariables()
	return config, nil
}

// WorkspaceSettings is the workspace-scope settings file.
func (c *Config) WorkspaceSettings() string {
	return filepath.Join(c.Workspace, ".vscode", "settings.json")
}

// Scope parses DefaultScope.
func (c *Config) Scope() (hostsettings.Scope, error) {
	return hostsettings.ParseScope(c.DefaultScope)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace is required"))
	}
	if c.UserSettings == "" {
		errs = append(errs, errors.New("user_settings is required"))
	}
	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket_path is required"))
	}
	if _, err := c.Scope(); err != nil {
		errs = append(errs, fmt.Errorf("default_scope: %w", err))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) expandVariables() {
	c.Workspace = expandVars(c.Workspace)
	c.UserSettings = expandVars(c.UserSettings)
	c.SocketPath = expandVars(c.SocketPath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default}. An unset or empty
// variable takes the default, or the empty string without one.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
