// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package orgsource finds the Salesforce CLI config file in a workspace
// and reads the current org identifier from it.
//
// The CLI has stored the same logical setting in two places over time:
//
//   - .sfdx/sfdx-config.json, field "defaultusername" (old CLI)
//   - .sf/config.json, field "target-org" (current CLI)
//
// Both may exist during a migration. The new location always wins.
// [Locator] produces a [Ref] tagged with the schema [Kind] it came
// from, and [ExtractIdentifier] reads the field that schema defines.
// Nothing is cached: every extraction re-reads the file from disk.
package orgsource

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies which config schema a file follows.
type Kind int

const (
	// NewSchema is .sf/config.json with a "target-org" field.
	NewSchema Kind = iota
	// OldSchema is .sfdx/sfdx-config.json with a "defaultusername" field.
	OldSchema
)

func (k Kind) String() string {
	switch k {
	case NewSchema:
		return "sf"
	case OldSchema:
		return "sfdx"
	default:
		return "unknown"
	}
}

// RelativePath is the workspace-relative location of the config file
// for this schema.
func (k Kind) RelativePath() string {
	if k == OldSchema {
		return filepath.Join(".sfdx", "sfdx-config.json")
	}
	return filepath.Join(".sf", "config.json")
}

// Field is the JSON field holding the org identifier.
func (k Kind) Field() string {
	if k == OldSchema {
		return "defaultusername"
	}
	return "target-org"
}

// Kinds lists the schemas in precedence order.
var Kinds = []Kind{NewSchema, OldSchema}

// Ref is a located config file.
type Ref struct {
	Kind Kind
	Path string
}

// Locator searches a workspace tree for config files.
type Locator struct {
	root string
}

// NewLocator returns a Locator rooted at the workspace directory.
func NewLocator(root string) *Locator {
	return &Locator{root: root}
}

// Root returns the workspace directory.
func (l *Locator) Root() string {
	return l.root
}

// Locate returns the authoritative config file: the new-schema file if
// one exists anywhere in the workspace, otherwise the old-schema file.
// Search errors count as "not found".
func (l *Locator) Locate() (Ref, bool) {
	refs := l.LocateAll()
	if len(refs) == 0 {
		return Ref{}, false
	}
	return refs[0], true
}

// LocateAll returns every config file found, in precedence order. At
// most one Ref per Kind is returned. The workspace is walked at most
// once, and not at all when every kind sits at the root.
func (l *Locator) LocateAll() []Ref {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return nil
	}

	found := make(map[Kind]string, len(Kinds))
	for _, kind := range Kinds {
		direct := filepath.Join(root, kind.RelativePath())
		if isRegularFile(direct) {
			found[kind] = direct
		}
	}
	if len(found) < len(Kinds) {
		walk(root, found)
	}

	var refs []Ref
	for _, kind := range Kinds {
		if path, exists := found[kind]; exists {
			refs = append(refs, Ref{Kind: kind, Path: path})
		}
	}
	return refs
}

// Tracks reports whether path is one of the config files currently in
// the workspace. Paths that cannot be a config file are rejected
// without searching.
func (l *Locator) Tracks(path string) bool {
	cleaned, err := filepath.Abs(path)
	if err != nil || !configShaped(cleaned) {
		return false
	}
	for _, ref := range l.LocateAll() {
		if ref.Path == cleaned {
			return true
		}
	}
	return false
}

// configShaped reports whether path ends in some kind's relative path.
func configShaped(path string) bool {
	for _, kind := range Kinds {
		if strings.HasSuffix(path, string(filepath.Separator)+kind.RelativePath()) {
			return true
		}
	}
	return false
}

// skippedDirectories are never descended into during the tree search.
var skippedDirectories = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// errFound stops the walk once every kind has been found.
var errFound = errors.New("found")

// walk searches the tree in lexical order and records, for each kind
// not already in found, the first file matching its relative path.
func walk(root string, found map[Kind]string) {
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if entry != nil && entry.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.IsDir() || path == root {
			return nil
		}
		if skippedDirectories[entry.Name()] {
			return fs.SkipDir
		}

		configDirectory := false
		for _, kind := range Kinds {
			relative := kind.RelativePath()
			if entry.Name() != filepath.Dir(relative) {
				continue
			}
			configDirectory = true
			if _, exists := found[kind]; exists {
				continue
			}
			candidate := filepath.Join(filepath.Dir(path), relative)
			if isRegularFile(candidate) {
				found[kind] = candidate
			}
		}
		if len(found) == len(Kinds) {
			return errFound
		}
		if configDirectory {
			return fs.SkipDir
		}
		return nil
	})
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
