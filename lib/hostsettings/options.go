// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostsettings

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/colorg/lib/colorrule"
)

// Setting keys. colorg's options live under the "sf-colorg" namespace;
// the color map is the editor's own workbench setting.
const (
	Namespace = "sf-colorg"

	KeyRules         = Namespace + ".rules"
	KeyStatusBar     = Namespace + ".target.statusBar"
	KeyActivityBar   = Namespace + ".target.activityBar"
	KeySettingsScope = Namespace + ".target.settingsScope"

	KeyColorCustomizations = "workbench.colorCustomizations"
)

// Options is colorg's view of the editor configuration, resolved from
// the user and workspace settings files.
type Options struct {
	// Rules is the ordered rule list. Absent means no rules.
	Rules []colorrule.Rule `json:"rules"`

	// StatusBar enables coloring the status bar. Default true.
	StatusBar bool `json:"status_bar"`

	// ActivityBar enables coloring the activity bar. Default true.
	ActivityBar bool `json:"activity_bar"`

	// Scope is where color customizations are written.
	Scope Scope `json:"scope"`
}

// DefaultOptions returns the options used when neither settings file
// sets a value.
func DefaultOptions(fallback Scope) Options {
	return Options{
		StatusBar:   true,
		ActivityBar: true,
		Scope:       fallback,
	}
}

// Fingerprint is a short content hash of the options. Two Options
// values have the same fingerprint exactly when they would drive the
// same resolution, which lets the coordinator ignore settings-file
// writes that did not touch colorg's namespace (including its own
// color writes).
func (o Options) Fingerprint() string {
	// Marshal only fails for an out-of-range Scope, which
	// resolveOptions never produces.
	data, _ := json.Marshal(o)
	hasher := blake3.New()
	hasher.Write(data)
	// Malformed rules marshal like an empty rule; hash their decode
	// errors so replacing one bad entry with another still counts.
	for index, rule := range o.Rules {
		if rule.Malformed != nil {
			fmt.Fprintf(hasher, "\x00%d:%v", index, rule.Malformed)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)[:12])
}

// resolveOptions layers setting maps in order; later layers override
// earlier ones key by key. Values of the wrong type are ignored.
func resolveOptions(fallback Scope, layers ...map[string]json.RawMessage) Options {
	options := DefaultOptions(fallback)
	scopeValue := ""

	for _, layer := range layers {
		if raw, exists := layer[KeyRules]; exists {
			if rules, ok := decodeRules(raw); ok {
				options.Rules = rules
			}
		}
		if raw, exists := layer[KeyStatusBar]; exists {
			var enabled bool
			if json.Unmarshal(raw, &enabled) == nil {
				options.StatusBar = enabled
			}
		}
		if raw, exists := layer[KeyActivityBar]; exists {
			var enabled bool
			if json.Unmarshal(raw, &enabled) == nil {
				options.ActivityBar = enabled
			}
		}
		if raw, exists := layer[KeySettingsScope]; exists {
			var value string
			if json.Unmarshal(raw, &value) == nil {
				scopeValue = value
			}
		}
	}

	options.Scope = ResolveScope(scopeValue, fallback)
	return options
}

// decodeRules decodes the rule list one entry at a time. An entry that
// is not a valid rule object becomes a malformed placeholder at the
// same index, so one bad entry never discards its neighbours. ok is
// false only when the value is not a list at all.
func decodeRules(raw json.RawMessage) ([]colorrule.Rule, bool) {
	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return nil, false
	}
	rules := make([]colorrule.Rule, len(entries))
	for index, entry := range entries {
		var rule colorrule.Rule
		if err := json.Unmarshal(entry, &rule); err != nil {
			rules[index] = colorrule.Rule{Malformed: fmt.Errorf("decoding %s: %w", entry, err)}
			continue
		}
		rules[index] = rule
	}
	return rules, true
}
