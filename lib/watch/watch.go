// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch reports changes to individual files using inotify.
//
// A [Watcher] holds one inotify descriptor. Each [Watcher.Add] watches
// the file's parent directory, not the file itself: tools that write a
// temporary file and rename it over the target create a new inode, so
// a file-level watch on the old inode would miss the replacement.
// Directory events are filtered down to the registered filenames.
//
// Bursts of events are coalesced: after the first matching event the
// watcher waits briefly, drains everything queued, and delivers one
// [Change] per affected file.
package watch

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// watchMask selects in-place writes, atomic renames, and creation.
const watchMask = unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO | unix.IN_CREATE

// coalesceDelay is how long the loop waits after a matching event
// before draining the queue. Saving a settings file or switching orgs
// with the CLI produces several events within a few milliseconds.
const coalesceDelay = 50 * time.Millisecond

// Change describes a modification to a watched file.
type Change struct {
	// Path is the absolute path of the file.
	Path string

	// Created is true when the file was created (or renamed into
	// place) during the coalescing window rather than only rewritten.
	Created bool
}

// Watcher delivers Changes for a set of files.
type Watcher struct {
	fd     int
	logger *slog.Logger

	mu          sync.Mutex
	directories map[int]string
	targets     map[string]map[string]bool

	changes   chan Change
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Watcher with no files registered. Close releases the
// inotify descriptor.
func New(logger *slog.Logger) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	watcher := &Watcher{
		fd:          fd,
		logger:      logger,
		directories: make(map[int]string),
		targets:     make(map[string]map[string]bool),
		changes:     make(chan Change, 16),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go watcher.loop()
	return watcher, nil
}

// Add registers a file. The file need not exist, but its parent
// directory must. Adding a registered file again is a no-op.
func (w *Watcher) Add(path string) error {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	directory := filepath.Dir(absolutePath)
	filename := filepath.Base(absolutePath)

	w.mu.Lock()
	defer w.mu.Unlock()

	names, watched := w.targets[directory]
	if !watched {
		descriptor, err := unix.InotifyAddWatch(w.fd, directory, watchMask)
		if err != nil {
			return fmt.Errorf("inotify_add_watch on %s: %w", directory, err)
		}
		w.directories[descriptor] = directory
		names = make(map[string]bool)
		w.targets[directory] = names
	}
	names[filename] = true
	return nil
}

// Watching reports whether path is registered and its directory watch
// is still live.
func (w *Watcher) Watching(path string) bool {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targets[filepath.Dir(absolutePath)][filepath.Base(absolutePath)]
}

// Paths returns the registered files in sorted order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for directory, names := range w.targets {
		for name := range names {
			paths = append(paths, filepath.Join(directory, name))
		}
	}
	sort.Strings(paths)
	return paths
}

// Changes returns the channel Changes are delivered on. It is closed
// when the Watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher and waits for its goroutine to exit. Safe to
// call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
	return nil
}

// loop polls the inotify descriptor until Close. Uses poll(2) with a
// 100ms timeout so the goroutine notices the stop signal promptly
// without spinning.
func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)
	defer unix.Close(w.fd)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			w.logger.Error("inotify poll failed, file watching stopped", "error", err)
			return
		}
		if count == 0 {
			continue
		}

		pending := make(map[string]bool)
		if !w.readEvents(buffer, pending) {
			return
		}
		if len(pending) == 0 {
			continue
		}

		select {
		case <-w.stop:
			return
		case <-time.After(coalesceDelay):
		}
		if !w.readEvents(buffer, pending) {
			return
		}

		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			select {
			case w.changes <- Change{Path: path, Created: pending[path]}:
			case <-w.stop:
				return
			}
		}
	}
}

// readEvents reads until the descriptor has no more queued events,
// recording matching files in pending (value true if any event for the
// file was a creation). Returns false on a fatal read error.
func (w *Watcher) readEvents(buffer []byte, pending map[string]bool) bool {
	for {
		bytesRead, err := unix.Read(w.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN {
				return true
			}
			if err == unix.EINTR {
				continue
			}
			w.logger.Error("inotify read failed, file watching stopped", "error", err)
			return false
		}
		if bytesRead <= 0 {
			return true
		}
		w.collect(buffer[:bytesRead], pending)
	}
}

// collect parses a buffer of raw inotify events. Layout from inotify(7):
//
//	struct inotify_event {
//	    int32_t  wd;     // offset 0
//	    uint32_t mask;   // offset 4
//	    uint32_t cookie; // offset 8
//	    uint32_t len;    // offset 12
//	    char     name[]; // offset 16, null-padded to alignment
//	};
func (w *Watcher) collect(buffer []byte, pending map[string]bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		descriptor := int(int32(binary.NativeEndian.Uint32(buffer[offset : offset+4])))
		mask := binary.NativeEndian.Uint32(buffer[offset+4 : offset+8])
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		name := nullTerminatedString(buffer[offset+unix.SizeofInotifyEvent : offset+eventSize])
		offset += eventSize

		directory, known := w.directories[descriptor]
		if !known {
			continue
		}

		// The directory was deleted or unmounted. Forget it so a
		// later Add can watch the recreated directory.
		if mask&unix.IN_IGNORED != 0 {
			delete(w.directories, descriptor)
			delete(w.targets, directory)
			continue
		}

		if name == "" || !w.targets[directory][name] {
			continue
		}
		path := filepath.Join(directory, name)
		created := mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0
		pending[path] = pending[path] || created
	}
}

// nullTerminatedString extracts a string from a null-padded byte slice,
// stopping at the first null byte.
func nullTerminatedString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
