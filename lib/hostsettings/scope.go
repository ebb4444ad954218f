// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostsettings

import "fmt"

// Scope is a settings persistence boundary.
type Scope int

const (
	// ScopeUser stores settings for the user across all workspaces.
	ScopeUser Scope = iota
	// ScopeWorkspace stores settings in the workspace's .vscode directory.
	ScopeWorkspace
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeWorkspace:
		return "workspace"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ResolveScope maps a settingsScope option value to a Scope.
// "workspace" and "user" select their scope; anything else, including
// the empty string, selects fallback.
func ResolveScope(value string, fallback Scope) Scope {
	switch value {
	case "workspace":
		return ScopeWorkspace
	case "user":
		return ScopeUser
	default:
		return fallback
	}
}

// ParseScope is the strict form of ResolveScope for daemon
// configuration, where an unknown value is a mistake worth reporting.
func ParseScope(value string) (Scope, error) {
	switch value {
	case "workspace":
		return ScopeWorkspace, nil
	case "user":
		return ScopeUser, nil
	default:
		return 0, fmt.Errorf("unknown settings scope %q (expected user or workspace)", value)
	}
}

// MarshalText encodes the scope by name, so JSON and CBOR output read
// "user" or "workspace" instead of an integer.
func (s Scope) MarshalText() ([]byte, error) {
	switch s {
	case ScopeUser, ScopeWorkspace:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("cannot encode %s", s)
	}
}

// UnmarshalText is the inverse of MarshalText.
func (s *Scope) UnmarshalText(text []byte) error {
	scope, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = scope
	return nil
}
