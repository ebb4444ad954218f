// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorg

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"

	"github.com/bureau-foundation/colorg/lib/colorrule"
	"github.com/bureau-foundation/colorg/lib/hostsettings"
)

// The four color customization keys colorg owns. Every other key in
// workbench.colorCustomizations belongs to someone else.
const (
	KeyStatusBarBackground   = "statusBar.background"
	KeyStatusBarForeground   = "statusBar.foreground"
	KeyActivityBarBackground = "activityBar.background"
	KeyActivityBarForeground = "activityBar.foreground"
)

// OwnedKeys lists the owned keys in a stable order.
var OwnedKeys = []string{
	KeyStatusBarBackground,
	KeyStatusBarForeground,
	KeyActivityBarBackground,
	KeyActivityBarForeground,
}

// Writer merges a color pair into the settings store.
type Writer struct {
	store  hostsettings.Store
	logger *slog.Logger
}

// NewWriter returns a Writer over store.
func NewWriter(store hostsettings.Store, logger *slog.Logger) *Writer {
	return &Writer{store: store, logger: logger}
}

// OwnedUpdate computes the value of each owned key for pair under the
// surface toggles. An empty string means the key is removed. A pair
// without a background leaves both colors of every surface absent.
func OwnedUpdate(pair colorrule.ColorPair, statusBar, activityBar bool) map[string]string {
	if pair.Background == "" {
		pair = colorrule.ColorPair{}
	}
	update := make(map[string]string, len(OwnedKeys))
	update[KeyStatusBarBackground] = ""
	update[KeyStatusBarForeground] = ""
	update[KeyActivityBarBackground] = ""
	update[KeyActivityBarForeground] = ""
	if statusBar {
		update[KeyStatusBarBackground] = pair.Background
		update[KeyStatusBarForeground] = pair.Foreground
	}
	if activityBar {
		update[KeyActivityBarBackground] = pair.Background
		update[KeyActivityBarForeground] = pair.Foreground
	}
	return update
}

// Apply writes pair into the color customizations at options.Scope.
// Only the owned keys change; the write is skipped when the merged
// result equals what is already stored, so repeating an Apply is
// invisible to the editor.
func (w *Writer) Apply(ctx context.Context, pair colorrule.ColorPair, options hostsettings.Options) error {
	return w.merge(ctx, options.Scope, OwnedUpdate(pair, options.StatusBar, options.ActivityBar))
}

// ClearOwnedKeys removes all four owned keys at scope.
func (w *Writer) ClearOwnedKeys(ctx context.Context, scope hostsettings.Scope) error {
	return w.merge(ctx, scope, OwnedUpdate(colorrule.ColorPair{}, false, false))
}

// merge applies update to a fresh read of the store.
func (w *Writer) merge(ctx context.Context, scope hostsettings.Scope, update map[string]string) error {
	current, err := w.store.Read(ctx, scope)
	if err != nil {
		return fmt.Errorf("reading %s color customizations: %w", scope, err)
	}

	next := maps.Clone(current)
	if next == nil {
		next = make(map[string]any)
	}
	for key, value := range update {
		if value == "" {
			delete(next, key)
		} else {
			next[key] = value
		}
	}

	if reflect.DeepEqual(normalize(current), next) {
		w.logger.Debug("color customizations unchanged", "scope", scope)
		return nil
	}

	if err := w.store.Write(ctx, scope, next); err != nil {
		return fmt.Errorf("writing %s color customizations: %w", scope, err)
	}
	w.logger.Info("color customizations updated",
		"scope", scope,
		KeyStatusBarBackground, update[KeyStatusBarBackground],
		KeyActivityBarBackground, update[KeyActivityBarBackground],
	)
	return nil
}

// normalize maps a nil read to an empty map for comparison.
func normalize(customizations map[string]any) map[string]any {
	if customizations == nil {
		return map[string]any{}
	}
	return customizations
}
