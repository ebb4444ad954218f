// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorg

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bureau-foundation/colorg/lib/colorrule"
	"github.com/bureau-foundation/colorg/lib/hostsettings"
)

func TestOwnedUpdate_Toggles(t *testing.T) {
	pair := colorrule.ColorPair{Background: "#123456", Foreground: "#abcdef"}

	update := OwnedUpdate(pair, false, true)

	expected := map[string]string{
		KeyActivityBarBackground: "#123456",
		KeyActivityBarForeground: "#abcdef",
		KeyStatusBarBackground:   "",
		KeyStatusBarForeground:   "",
	}
	if !reflect.DeepEqual(update, expected) {
		t.Errorf("OwnedUpdate = %v, expected %v", update, expected)
	}
}

func TestOwnedUpdate_ForegroundWithoutBackground(t *testing.T) {
	update := OwnedUpdate(colorrule.ColorPair{Foreground: "#fff"}, true, true)
	for key, value := range update {
		if value != "" {
			t.Errorf("%s = %q, expected absent when background is absent", key, value)
		}
	}
}

func TestApply_WritesOnlyOwnedKeys(t *testing.T) {
	store := newMemoryStore()
	store.seed(hostsettings.ScopeWorkspace, map[string]any{
		"editor.background":    "#202020",
		"statusBar.background": "#999999",
		"[Monokai]":            map[string]any{"tab.activeBackground": "#111"},
	})
	writer := NewWriter(store, testLogger())

	options := hostsettings.Options{StatusBar: false, ActivityBar: true, Scope: hostsettings.ScopeWorkspace}
	pair := colorrule.ColorPair{Background: "#123456", Foreground: "#abcdef"}
	if err := writer.Apply(context.Background(), pair, options); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	expected := map[string]any{
		"editor.background":      "#202020",
		"[Monokai]":              map[string]any{"tab.activeBackground": "#111"},
		KeyActivityBarBackground: "#123456",
		KeyActivityBarForeground: "#abcdef",
	}
	if got := store.get(hostsettings.ScopeWorkspace); !reflect.DeepEqual(got, expected) {
		t.Errorf("store = %v, expected %v", got, expected)
	}
	if got := store.get(hostsettings.ScopeUser); len(got) != 0 {
		t.Errorf("user scope touched: %v", got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	store := newMemoryStore()
	store.seed(hostsettings.ScopeUser, map[string]any{"editor.background": "#202020"})
	writer := NewWriter(store, testLogger())
	options := hostsettings.Options{StatusBar: true, ActivityBar: true, Scope: hostsettings.ScopeUser}
	pair := colorrule.ColorPair{Background: "#f00"}

	if err := writer.Apply(context.Background(), pair, options); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	afterFirst := store.get(hostsettings.ScopeUser)

	if err := writer.Apply(context.Background(), pair, options); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if got := store.get(hostsettings.ScopeUser); !reflect.DeepEqual(got, afterFirst) {
		t.Errorf("state after second Apply = %v, expected %v", got, afterFirst)
	}
	if store.writeCount() != 1 {
		t.Errorf("writes = %d, expected 1 (second Apply must not rewrite)", store.writeCount())
	}
}

func TestClearOwnedKeys(t *testing.T) {
	store := newMemoryStore()
	store.seed(hostsettings.ScopeUser, map[string]any{
		KeyStatusBarBackground:   "#f00",
		KeyStatusBarForeground:   "#fff",
		KeyActivityBarBackground: "#f00",
		"sideBar.background":     "#333",
	})
	writer := NewWriter(store, testLogger())

	if err := writer.ClearOwnedKeys(context.Background(), hostsettings.ScopeUser); err != nil {
		t.Fatalf("ClearOwnedKeys: %v", err)
	}
	expected := map[string]any{"sideBar.background": "#333"}
	if got := store.get(hostsettings.ScopeUser); !reflect.DeepEqual(got, expected) {
		t.Errorf("store = %v, expected %v", got, expected)
	}
}

func TestClearOwnedKeys_NothingToClear(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, testLogger())

	if err := writer.ClearOwnedKeys(context.Background(), hostsettings.ScopeWorkspace); err != nil {
		t.Fatalf("ClearOwnedKeys: %v", err)
	}
	if store.writeCount() != 0 {
		t.Errorf("writes = %d, expected 0 for an already clear store", store.writeCount())
	}
}

func TestApply_WriteFailure(t *testing.T) {
	store := newMemoryStore()
	rejected := errors.New("settings file is read-only")
	store.failWrites(rejected)
	writer := NewWriter(store, testLogger())

	options := hostsettings.Options{StatusBar: true, Scope: hostsettings.ScopeUser}
	err := writer.Apply(context.Background(), colorrule.ColorPair{Background: "#f00"}, options)
	if !errors.Is(err, rejected) {
		t.Fatalf("Apply error = %v, expected to wrap %v", err, rejected)
	}
}
