// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package orgsource

import (
	"encoding/json"
	"os"

	"github.com/tidwall/jsonc"
)

// ExtractIdentifier reads ref's file from disk and returns the org
// identifier stored under the field its Kind defines. The file is read
// fresh on every call because the CLI rewrites it in place when the
// user switches orgs.
//
// A missing file, malformed content, or a missing, empty, or non-string
// field all report false. No error is surfaced: each of those means
// "no org" to the caller.
func ExtractIdentifier(ref Ref) (string, bool) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &fields); err != nil {
		return "", false
	}

	raw, exists := fields[ref.Kind.Field()]
	if !exists {
		return "", false
	}

	var identifier string
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return "", false
	}

	if identifier == "" {
		return "", false
	}
	return identifier, true
}
