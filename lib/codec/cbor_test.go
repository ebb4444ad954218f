// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bureau-foundation/colorg/lib/hostsettings"
)

type focusPayload struct {
	Focused bool `cbor:"focused"`
}

type envelope struct {
	Action  string     `cbor:"action"`
	Payload RawMessage `cbor:"payload,omitempty"`
}

type scopedStatus struct {
	Scope hostsettings.Scope `json:"scope"`
	Org   string             `json:"org,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(map[string]any{"action": "focus", "b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(map[string]any{"a": 1, "b": 2, "action": "focus"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("map key order changed the encoding:\n%x\n%x", first, second)
	}
}

func TestRawMessagePayload(t *testing.T) {
	payload, err := Marshal(focusPayload{Focused: true})
	if err != nil {
		t.Fatalf("Marshal payload: %v", err)
	}
	data, err := Marshal(envelope{Action: "focus", Payload: payload})
	if err != nil {
		t.Fatalf("Marshal envelope: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	if decoded.Action != "focus" {
		t.Errorf("Action = %q", decoded.Action)
	}
	var focus focusPayload
	if err := Unmarshal(decoded.Payload, &focus); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	if !focus.Focused {
		t.Error("Focused = false after round trip")
	}
}

func TestAnyDecodesToStringMap(t *testing.T) {
	data, err := Marshal(map[string]any{"nested": map[string]any{"org": "prod"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, expected map[string]any", decoded)
	}
	if _, ok := outer["nested"].(map[string]any); !ok {
		t.Errorf("nested value is %T, expected map[string]any", outer["nested"])
	}
}

func TestScopeTravelsByName(t *testing.T) {
	data, err := Marshal(scopedStatus{Scope: hostsettings.ScopeWorkspace, Org: "prod-1"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"workspace"`) {
		t.Errorf("diagnostic %s does not name the scope", diagnostic)
	}

	var decoded scopedStatus
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Scope != hostsettings.ScopeWorkspace || decoded.Org != "prod-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestStreamEncoding(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, action := range []string{"focus", "resolve"} {
		if err := encoder.Encode(envelope{Action: action}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, expected := range []string{"focus", "resolve"} {
		var decoded envelope
		if err := decoder.Decode(&decoded); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded.Action != expected {
			t.Errorf("Action = %q, expected %q", decoded.Action, expected)
		}
	}
}
