// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorg

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/bureau-foundation/colorg/lib/colorrule"
	"github.com/bureau-foundation/colorg/lib/hostsettings"
	"github.com/bureau-foundation/colorg/lib/orgsource"
	"github.com/bureau-foundation/colorg/lib/watch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// memoryStore is an in-memory hostsettings.Store that counts writes.
type memoryStore struct {
	mu       sync.Mutex
	maps     map[hostsettings.Scope]map[string]any
	writes   int
	writeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{maps: make(map[hostsettings.Scope]map[string]any)}
}

func (s *memoryStore) Read(ctx context.Context, scope hostsettings.Scope) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.maps[scope]), nil
}

func (s *memoryStore) Write(ctx context.Context, scope hostsettings.Scope, customizations map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.maps[scope] = maps.Clone(customizations)
	return nil
}

func (s *memoryStore) seed(scope hostsettings.Scope, customizations map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[scope] = maps.Clone(customizations)
}

func (s *memoryStore) get(scope hostsettings.Scope) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.maps[scope])
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memoryStore) failWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// staticOptions is a settable hostsettings.OptionsSource.
type staticOptions struct {
	mu      sync.Mutex
	options hostsettings.Options
	err     error
}

func (o *staticOptions) LoadOptions(ctx context.Context) (hostsettings.Options, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.options, o.err
}

func (o *staticOptions) set(options hostsettings.Options) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.options = options
}

// fakeWatchSet records registrations; tests push changes by hand.
type fakeWatchSet struct {
	mu      sync.Mutex
	paths   map[string]bool
	changes chan watch.Change
	closed  bool

	// requireDirectory makes Add fail for a file whose parent
	// directory is missing, as inotify does.
	requireDirectory bool
}

func newFakeWatchSet() *fakeWatchSet {
	return &fakeWatchSet{
		paths:   make(map[string]bool),
		changes: make(chan watch.Change, 8),
	}
}

func (w *fakeWatchSet) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watch set closed")
	}
	if w.requireDirectory {
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			return err
		}
	}
	w.paths[path] = true
	return nil
}

func (w *fakeWatchSet) Watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paths[path]
}

func (w *fakeWatchSet) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for path := range w.paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (w *fakeWatchSet) Changes() <-chan watch.Change {
	return w.changes
}

func (w *fakeWatchSet) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWatchSet) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// harness wires a pipeline and coordinator over a temp workspace.
type harness struct {
	root        string
	store       *memoryStore
	options     *staticOptions
	pipeline    *Pipeline
	coordinator *Coordinator
	watchSet    *fakeWatchSet
}

func newHarness(t *testing.T, options hostsettings.Options) *harness {
	t.Helper()
	return newHarnessWithSettings(t, options, func(root string) []string {
		return []string{"/settings/user.json"}
	})
}

// newHarnessWithSettings builds a harness whose settings paths are
// derived from the workspace root.
func newHarnessWithSettings(t *testing.T, options hostsettings.Options, settingsPaths func(root string) []string) *harness {
	t.Helper()
	h := &harness{
		root:     t.TempDir(),
		store:    newMemoryStore(),
		options:  &staticOptions{options: options},
		watchSet: newFakeWatchSet(),
	}
	logger := testLogger()
	h.pipeline = NewPipeline(orgsource.NewLocator(h.root), h.options, NewWriter(h.store, logger), logger)
	h.coordinator = NewCoordinator(CoordinatorConfig{
		Pipeline:      h.pipeline,
		SettingsPaths: settingsPaths(h.root),
		NewWatchSet:   func() (WatchSet, error) { return h.watchSet, nil },
		Logger:        logger,
	})
	return h
}

func (h *harness) handle(t *testing.T, kind EventKind, path string) {
	t.Helper()
	if err := h.coordinator.Handle(context.Background(), Event{Kind: kind, Path: path}); err != nil {
		t.Fatalf("Handle(%s): %v", kind, err)
	}
}

func prodRules() []colorrule.Rule {
	return []colorrule.Rule{
		{Regex: "^prod-", Color: "#f00"},
		{Regex: ".*", Color: "#0f0", ForegroundColor: "#fff"},
	}
}

func optionsFor(scope hostsettings.Scope) hostsettings.Options {
	return hostsettings.Options{
		Rules:       prodRules(),
		StatusBar:   true,
		ActivityBar: true,
		Scope:       scope,
	}
}
