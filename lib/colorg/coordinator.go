// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/colorg/lib/hostsettings"
	"github.com/bureau-foundation/colorg/lib/orgsource"
	"github.com/bureau-foundation/colorg/lib/watch"
)

// State is the coordinator's lifecycle state.
type State int

const (
	// StateInactive is before activation and after deactivation.
	StateInactive State = iota
	// StateWatching is the steady state while the host is alive.
	StateWatching
)

func (s State) String() string {
	if s == StateWatching {
		return "watching"
	}
	return "inactive"
}

// EventKind identifies a trigger.
type EventKind int

const (
	EventActivate EventKind = iota
	EventDeactivate
	// EventActiveEditor carries the path of the newly active editor.
	EventActiveEditor
	// EventSettingsChanged fires when a settings file is rewritten.
	EventSettingsChanged
	EventResourceChanged
	EventResourceCreated
	EventFocusLost
	EventFocusGained
	// EventResolve is an explicit request to re-resolve.
	EventResolve
)

var eventNames = map[EventKind]string{
	EventActivate:        "activate",
	EventDeactivate:      "deactivate",
	EventActiveEditor:    "active-editor",
	EventSettingsChanged: "settings-changed",
	EventResourceChanged: "resource-changed",
	EventResourceCreated: "resource-created",
	EventFocusLost:       "focus-lost",
	EventFocusGained:     "focus-gained",
	EventResolve:         "resolve",
}

func (k EventKind) String() string {
	if name, exists := eventNames[k]; exists {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one trigger delivered to the coordinator.
type Event struct {
	Kind EventKind

	// Path is the file involved, for editor and file events.
	Path string

	// reply receives the handler's result when the sender waits.
	reply chan error
}

// WatchSet is the file-watch subscription set the coordinator owns
// while watching. *watch.Watcher implements it.
type WatchSet interface {
	Add(path string) error
	Watching(path string) bool
	Paths() []string
	Changes() <-chan watch.Change
	Close() error
}

// Status is a point-in-time snapshot of the coordinator.
type Status struct {
	State      State
	Workspace  string
	Resolution *Resolution
	Watched    []string
	LastError  string
}

// CoordinatorConfig holds the coordinator's collaborators.
type CoordinatorConfig struct {
	Pipeline *Pipeline

	// SettingsPaths are the editor settings files. Changes to them
	// become EventSettingsChanged.
	SettingsPaths []string

	// NewWatchSet creates the watch subscriptions at activation.
	NewWatchSet func() (WatchSet, error)

	Logger *slog.Logger
}

// Coordinator serializes every trigger through a single goroutine and
// decides, per trigger, whether to resolve, clear, or do nothing.
// Handlers always re-derive the full color state rather than patching
// it, so a dropped or reordered trigger cannot leave colors drifting
// from the actual org.
type Coordinator struct {
	pipeline      *Pipeline
	settingsPaths map[string]bool
	newWatchSet   func() (WatchSet, error)
	logger        *slog.Logger

	events chan Event

	// Loop-owned state. Only touched by Handle, which runs on one
	// goroutine at a time.
	state       State
	watchSet    WatchSet
	forwardStop chan struct{}
	forwardDone chan struct{}
	lastOptions *hostsettings.Options

	// statusMu guards the snapshot read by Status from other
	// goroutines.
	statusMu       sync.Mutex
	publishedState State
	publishedWatch WatchSet
	resolution     *Resolution
	lastError      error
}

// NewCoordinator creates an inactive Coordinator.
func NewCoordinator(config CoordinatorConfig) *Coordinator {
	settingsPaths := make(map[string]bool, len(config.SettingsPaths))
	for _, path := range config.SettingsPaths {
		if absolutePath, err := filepath.Abs(path); err == nil {
			settingsPaths[absolutePath] = true
		}
	}
	return &Coordinator{
		pipeline:      config.Pipeline,
		settingsPaths: settingsPaths,
		newWatchSet:   config.NewWatchSet,
		logger:        config.Logger,
		events:        make(chan Event, 64),
	}
}

// Post queues an event without waiting for it to be handled. Returns
// false if ctx ends first.
func (c *Coordinator) Post(ctx context.Context, event Event) bool {
	event.reply = nil
	select {
	case c.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Send queues an event and waits for its handler's result.
func (c *Coordinator) Send(ctx context.Context, event Event) error {
	event.reply = make(chan error, 1)
	select {
	case c.events <- event:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-event.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run activates, then handles queued events one at a time until ctx is
// cancelled, then deactivates. Handler failures are logged and never
// stop the loop.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.Handle(ctx, Event{Kind: EventActivate}); err != nil {
		c.logger.Error("activation incomplete", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			// Deactivation still has to clear colors after the
			// caller's context is gone.
			return c.Handle(context.WithoutCancel(ctx), Event{Kind: EventDeactivate})
		case event := <-c.events:
			err := c.Handle(ctx, event)
			if err != nil {
				c.logger.Error("event handling failed", "event", event.Kind, "path", event.Path, "error", err)
			}
			if event.reply != nil {
				event.reply <- err
			}
		}
	}
}

// Handle runs the transition for one event. Run calls it from the loop
// goroutine; tests may call it directly when no loop is running.
func (c *Coordinator) Handle(ctx context.Context, event Event) error {
	if c.state == StateInactive && event.Kind != EventActivate {
		c.logger.Debug("ignoring event while inactive", "event", event.Kind)
		return nil
	}

	var err error
	switch event.Kind {
	case EventActivate:
		if c.state == StateWatching {
			return nil
		}
		err = c.activate(ctx)
	case EventDeactivate:
		err = c.deactivate(ctx)
	case EventActiveEditor:
		if !c.pipeline.Locator().Tracks(event.Path) {
			return nil
		}
		err = c.resolve(ctx)
	case EventSettingsChanged:
		err = c.settingsChanged(ctx)
	case EventResourceChanged, EventResourceCreated, EventFocusGained, EventResolve:
		err = c.resolve(ctx)
	case EventFocusLost:
		err = c.focusLost(ctx)
	default:
		err = fmt.Errorf("unknown event %s", event.Kind)
	}

	c.statusMu.Lock()
	c.lastError = err
	c.statusMu.Unlock()
	return err
}

// State returns the lifecycle state. Only meaningful from the loop
// goroutine or when no loop is running.
func (c *Coordinator) State() State {
	return c.state
}

// Status returns a snapshot safe to read from any goroutine.
func (c *Coordinator) Status() Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()

	status := Status{
		State:     c.publishedState,
		Workspace: c.pipeline.Locator().Root(),
	}
	if c.resolution != nil {
		resolution := *c.resolution
		status.Resolution = &resolution
	}
	if c.lastError != nil {
		status.LastError = c.lastError.Error()
	}
	if c.publishedWatch != nil {
		status.Watched = c.publishedWatch.Paths()
	}
	return status
}

// setState changes the lifecycle state and publishes it for Status.
func (c *Coordinator) setState(state State) {
	c.state = state
	c.statusMu.Lock()
	c.publishedState = state
	if state == StateInactive {
		c.resolution = nil
	}
	c.statusMu.Unlock()
}

// setWatchSet records the owned watch set and publishes it for Status.
func (c *Coordinator) setWatchSet(watchSet WatchSet) {
	c.watchSet = watchSet
	c.statusMu.Lock()
	c.publishedWatch = watchSet
	c.statusMu.Unlock()
}

// activate clears stale colors, starts watching, and resolves once.
// Failures degrade (no cleanup, fewer watches) but the coordinator
// still enters StateWatching so later triggers are processed.
func (c *Coordinator) activate(ctx context.Context) error {
	var problems []error

	if cleanupErr := c.pipeline.ClearOwnedKeys(ctx); cleanupErr != nil {
		problems = append(problems, fmt.Errorf("initial cleanup: %w", cleanupErr))
	}

	watchSet, watchErr := c.newWatchSet()
	if watchErr != nil {
		problems = append(problems, fmt.Errorf("starting watchers: %w", watchErr))
	} else {
		committed := false
		defer func() {
			if !committed {
				watchSet.Close()
			}
		}()
		for path := range c.settingsPaths {
			if addErr := watchSet.Add(path); addErr != nil {
				c.logger.Warn("settings file not watched", "path", path, "error", addErr)
			}
		}
		c.setWatchSet(watchSet)
		c.startForwarding(watchSet)
		committed = true
	}

	c.setState(StateWatching)
	c.logger.Info("activated", "workspace", c.pipeline.Locator().Root())

	if resolveErr := c.resolve(ctx); resolveErr != nil {
		problems = append(problems, resolveErr)
	}
	return errors.Join(problems...)
}

// deactivate releases every watch and clears colors.
func (c *Coordinator) deactivate(ctx context.Context) error {
	c.stopWatching()
	c.setState(StateInactive)
	c.lastOptions = nil

	err := c.pipeline.ClearOwnedKeys(ctx)
	c.logger.Info("deactivated")
	if err != nil {
		return fmt.Errorf("clearing colors: %w", err)
	}
	return nil
}

// resolve runs the pipeline and keeps the watch set in step with the
// config files that currently exist.
func (c *Coordinator) resolve(ctx context.Context) error {
	resolution, err := c.pipeline.Resolve(ctx)
	c.refreshWatches(resolution.Refs)
	if err != nil {
		return fmt.Errorf("resolving: %w", err)
	}

	c.statusMu.Lock()
	c.resolution = &resolution
	c.statusMu.Unlock()

	// A scope switch leaves colors behind in the old scope.
	if previous := c.lastOptions; previous != nil && previous.Scope != resolution.Options.Scope {
		if clearErr := c.pipeline.writer.ClearOwnedKeys(ctx, previous.Scope); clearErr != nil {
			c.logger.Warn("clearing previous scope failed", "scope", previous.Scope, "error", clearErr)
		}
	}
	options := resolution.Options
	c.lastOptions = &options
	return nil
}

// settingsChanged re-runs from scratch when colorg's own options
// changed. Writes that only touched other settings (including colorg's
// own color writes) leave the fingerprint unchanged and are ignored.
func (c *Coordinator) settingsChanged(ctx context.Context) error {
	options, err := c.pipeline.LoadOptions(ctx)
	if err != nil {
		return fmt.Errorf("loading options: %w", err)
	}
	if c.lastOptions != nil && c.lastOptions.Fingerprint() == options.Fingerprint() {
		return nil
	}

	c.logger.Info("options changed", "fingerprint", options.Fingerprint(), "scope", options.Scope)
	if err := c.pipeline.ClearOwnedKeys(ctx); err != nil {
		c.logger.Warn("cleanup before re-resolve failed", "error", err)
	}
	return c.resolve(ctx)
}

// focusLost clears colors when they are stored per user: otherwise the
// org indicator would bleed into every other editor window.
func (c *Coordinator) focusLost(ctx context.Context) error {
	options, err := c.pipeline.LoadOptions(ctx)
	if err != nil {
		return fmt.Errorf("loading options: %w", err)
	}
	if options.Scope != hostsettings.ScopeUser {
		return nil
	}
	return c.pipeline.Clear(ctx, options)
}

// refreshWatches adds any settings file or located config file that is
// not yet watched. A project that gains .sf/config.json after
// activation is tracked from then on, and so is a workspace settings
// file whose directory did not exist at activation (colorg creates it
// on its first workspace write) or was removed and recreated.
func (c *Coordinator) refreshWatches(refs []orgsource.Ref) {
	if c.watchSet == nil {
		return
	}
	for path := range c.settingsPaths {
		if c.watchSet.Watching(path) {
			continue
		}
		if err := c.watchSet.Add(path); err != nil {
			c.logger.Debug("settings file still not watched", "path", path, "error", err)
			continue
		}
		c.logger.Info("watching settings file", "path", path)
	}
	for _, ref := range refs {
		if c.watchSet.Watching(ref.Path) {
			continue
		}
		if err := c.watchSet.Add(ref.Path); err != nil {
			c.logger.Warn("config file not watched", "path", ref.Path, "error", err)
			continue
		}
		c.logger.Debug("watching config file", "path", ref.Path, "schema", ref.Kind)
	}
}

// startForwarding turns watch changes into events on the loop's queue.
func (c *Coordinator) startForwarding(watchSet WatchSet) {
	stop := make(chan struct{})
	done := make(chan struct{})
	c.forwardStop = stop
	c.forwardDone = done

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case change, ok := <-watchSet.Changes():
				if !ok {
					return
				}
				event := Event{Kind: EventResourceChanged, Path: change.Path}
				switch {
				case c.settingsPaths[change.Path]:
					event.Kind = EventSettingsChanged
				case change.Created:
					event.Kind = EventResourceCreated
				}
				select {
				case c.events <- event:
				case <-stop:
					return
				}
			}
		}
	}()
}

// stopWatching closes the watch set and waits for the forwarder.
func (c *Coordinator) stopWatching() {
	if c.forwardStop != nil {
		close(c.forwardStop)
		<-c.forwardDone
		c.forwardStop = nil
		c.forwardDone = nil
	}
	if c.watchSet != nil {
		if err := c.watchSet.Close(); err != nil {
			c.logger.Warn("closing watchers", "error", err)
		}
		c.setWatchSet(nil)
	}
}
