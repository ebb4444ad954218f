// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/colorg/lib/codec"
	"github.com/bureau-foundation/colorg/lib/colorg"
)

// Action names.
const (
	ActionFocus   = "focus"
	ActionEditor  = "editor"
	ActionResolve = "resolve"
	ActionStatus  = "status"
)

// Target is what the actions drive. *colorg.Coordinator implements it.
type Target interface {
	Send(ctx context.Context, event colorg.Event) error
	Status() colorg.Status
}

// FocusRequest reports a change of window focus.
type FocusRequest struct {
	Focused bool `cbor:"focused"`
}

// EditorRequest reports the file in the newly active editor.
type EditorRequest struct {
	Path string `cbor:"path"`
}

// StatusReport is the daemon's state as returned by the resolve and
// status actions. It is also the CLI's --json output.
type StatusReport struct {
	State     string `json:"state"`
	Workspace string `json:"workspace"`

	// ConfigPath and Schema describe the located org config file.
	ConfigPath string `json:"config_path,omitempty"`
	Schema     string `json:"schema,omitempty"`

	Org string `json:"org,omitempty"`

	// Rule is the index of the matching rule, or -1.
	Rule       int    `json:"rule"`
	Background string `json:"background,omitempty"`
	Foreground string `json:"foreground,omitempty"`

	Scope       string `json:"scope,omitempty"`
	StatusBar   bool   `json:"status_bar"`
	ActivityBar bool   `json:"activity_bar"`

	InvalidRules []string `json:"invalid_rules,omitempty"`
	Watched      []string `json:"watched,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
}

// NewStatusReport flattens a coordinator snapshot.
func NewStatusReport(status colorg.Status) StatusReport {
	report := StatusReport{
		State:     status.State.String(),
		Workspace: status.Workspace,
		Rule:      -1,
		Watched:   status.Watched,
		LastError: status.LastError,
	}
	resolution := status.Resolution
	if resolution == nil {
		return report
	}
	if resolution.Found {
		report.ConfigPath = resolution.Ref.Path
		report.Schema = resolution.Ref.Kind.String()
	}
	report.Org = resolution.Org
	report.Rule = resolution.Result.Index
	report.Background = resolution.Result.Pair.Background
	report.Foreground = resolution.Result.Pair.Foreground
	report.Scope = resolution.Options.Scope.String()
	report.StatusBar = resolution.Options.StatusBar
	report.ActivityBar = resolution.Options.ActivityBar
	for _, ruleError := range resolution.RuleErrors {
		report.InvalidRules = append(report.InvalidRules, ruleError.Error())
	}
	return report
}

// Register installs the colorg actions on server.
func Register(server *Server, target Target) {
	server.Handle(ActionFocus, func(ctx context.Context, raw []byte) (any, error) {
		var request FocusRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("invalid focus request: %w", err)
		}
		kind := colorg.EventFocusLost
		if request.Focused {
			kind = colorg.EventFocusGained
		}
		return nil, target.Send(ctx, colorg.Event{Kind: kind})
	})

	server.Handle(ActionEditor, func(ctx context.Context, raw []byte) (any, error) {
		var request EditorRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("invalid editor request: %w", err)
		}
		if request.Path == "" {
			return nil, errors.New("missing required field: path")
		}
		if !filepath.IsAbs(request.Path) {
			return nil, fmt.Errorf("editor path %q is not absolute", request.Path)
		}
		return nil, target.Send(ctx, colorg.Event{Kind: colorg.EventActiveEditor, Path: request.Path})
	})

	server.Handle(ActionResolve, func(ctx context.Context, raw []byte) (any, error) {
		if err := target.Send(ctx, colorg.Event{Kind: colorg.EventResolve}); err != nil {
			return nil, err
		}
		return NewStatusReport(target.Status()), nil
	})

	server.Handle(ActionStatus, func(ctx context.Context, raw []byte) (any, error) {
		return NewStatusReport(target.Status()), nil
	})
}
