// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostsettings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Store reads and writes the workbench.colorCustomizations object at a
// given scope. Read returns a fresh copy on every call; Write replaces
// the whole object. Callers merge.
type Store interface {
	Read(ctx context.Context, scope Scope) (map[string]any, error)
	Write(ctx context.Context, scope Scope, customizations map[string]any) error
}

// OptionsSource loads colorg's options.
type OptionsSource interface {
	LoadOptions(ctx context.Context) (Options, error)
}

// FileStore is a Store and OptionsSource backed by the editor's two
// settings files.
type FileStore struct {
	userPath      string
	workspacePath string
	defaultScope  Scope
}

// NewFileStore returns a FileStore over the given settings files.
// defaultScope is used when settingsScope is unset or unrecognized.
func NewFileStore(userPath, workspacePath string, defaultScope Scope) *FileStore {
	return &FileStore{
		userPath:      userPath,
		workspacePath: workspacePath,
		defaultScope:  defaultScope,
	}
}

// Path returns the settings file for scope.
func (s *FileStore) Path(scope Scope) string {
	if scope == ScopeWorkspace {
		return s.workspacePath
	}
	return s.userPath
}

// Paths returns both settings files, user first.
func (s *FileStore) Paths() []string {
	return []string{s.userPath, s.workspacePath}
}

// LoadOptions reads both settings files and resolves colorg's options.
// Missing files contribute nothing. A malformed file is an error: the
// options it would have supplied are unknown.
func (s *FileStore) LoadOptions(ctx context.Context) (Options, error) {
	user, err := readSettings(s.userPath)
	if err != nil {
		return Options{}, err
	}
	workspace, err := readSettings(s.workspacePath)
	if err != nil {
		return Options{}, err
	}
	return resolveOptions(s.defaultScope, user.values, workspace.values), nil
}

// Read returns the color customizations at scope. A missing file or
// missing key yields an empty map. String values are returned as
// strings; every other value is a json.RawMessage.
func (s *FileStore) Read(ctx context.Context, scope Scope) (map[string]any, error) {
	settings, err := readSettings(s.Path(scope))
	if err != nil {
		return nil, err
	}

	customizations := make(map[string]any)
	raw, exists := settings.values[KeyColorCustomizations]
	if !exists || string(raw) == "null" {
		return customizations, nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%s: %s is not an object: %w", s.Path(scope), KeyColorCustomizations, err)
	}
	// Color strings are decoded so callers can compare them. Anything
	// else (theme-scoped objects, numbers) stays raw and is written
	// back with its key order and number text intact.
	for key, value := range entries {
		var color string
		if json.Unmarshal(value, &color) == nil {
			customizations[key] = color
			continue
		}
		customizations[key] = value
	}
	return customizations, nil
}

// Write replaces the color customizations at scope. The file is re-read
// immediately before writing so concurrent edits to other settings are
// not lost, and is replaced atomically. An empty map removes the key.
func (s *FileStore) Write(ctx context.Context, scope Scope, customizations map[string]any) error {
	path := s.Path(scope)

	settings, err := readSettings(path)
	if err != nil {
		return err
	}

	if len(customizations) == 0 {
		if !settings.remove(KeyColorCustomizations) {
			return nil
		}
	} else {
		raw, err := json.Marshal(customizations)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", KeyColorCustomizations, err)
		}
		settings.set(KeyColorCustomizations, raw)
	}

	data, err := settings.encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	return writeFileAtomic(path, data)
}

// settingsFile is a parsed settings file that remembers the order of
// its top-level keys, so a rewrite does not shuffle the user's file.
type settingsFile struct {
	keys   []string
	values map[string]json.RawMessage
}

// readSettings parses a JSONC settings file. A missing or empty file
// is an empty settings object.
func readSettings(path string) (*settingsFile, error) {
	settings := &settingsFile{values: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return settings, nil
	}

	if err := settings.decode(stripped); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

func (f *settingsFile) decode(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delimiter, ok := token.(json.Delim); !ok || delimiter != '{' {
		return fmt.Errorf("settings must be a JSON object")
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", token)
		}
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		f.set(key, value)
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after settings object")
	}
	return nil
}

func (f *settingsFile) set(key string, value json.RawMessage) {
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

func (f *settingsFile) remove(key string) bool {
	if _, exists := f.values[key]; !exists {
		return false
	}
	delete(f.values, key)
	for index, existing := range f.keys {
		if existing == key {
			f.keys = append(f.keys[:index], f.keys[index+1:]...)
			break
		}
	}
	return true
}

// encode writes the settings as indented JSON in original key order.
func (f *settingsFile) encode() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString("{")
	for index, key := range f.keys {
		if index > 0 {
			buffer.WriteString(",")
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buffer.WriteString("\n    ")
		buffer.Write(encodedKey)
		buffer.WriteString(": ")
		if err := json.Indent(&buffer, f.values[key], "    ", "    "); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
	}
	if len(f.keys) > 0 {
		buffer.WriteString("\n")
	}
	buffer.WriteString("}\n")
	return buffer.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file in the same
// directory, fsyncs it, and renames it into place. The editor never
// observes a partially written settings file.
func writeFileAtomic(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary settings file: %w", err)
	}
	temporaryPath := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary settings file: %w", err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary settings file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary settings file: %w", err)
	}
	if err := os.Chmod(temporaryPath, 0644); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("setting settings file mode: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming settings file into place: %w", err)
	}
	return nil
}
