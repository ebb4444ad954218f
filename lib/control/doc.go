// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package control is the daemon's Unix-socket request/response
// protocol. The editor host (or a user at a shell) uses it to deliver
// the triggers colorg cannot observe on its own: window focus, the
// active editor, and explicit re-resolution.
//
// Each connection carries one CBOR request and one CBOR response. A
// request is a map with an "action" field plus action-specific fields:
//
//	{action: "focus", focused: false}
//	{action: "editor", path: "/work/app/.sf/config.json"}
//	{action: "resolve"}
//	{action: "status"}
//
// The response is {ok, error, data}; data holds a [StatusReport] for
// the resolve and status actions.
package control
