// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds colorg's CBOR configuration for the control
// socket.
//
// The split between formats follows the audience. Files the editor or
// the user reads (settings.json, .sf/config.json) are JSON. Messages
// between the colorg CLI and the running daemon are CBOR, encoded
// deterministically (RFC 8949 §4.2) so the same request always produces
// the same bytes.
//
// Types shared with CLI --json output carry `json` struct tags;
// fxamacker/cbor falls back to them when no `cbor` tag is present, so
// one tag names the field in both formats. Types that only ever cross
// the socket carry `cbor` tags.
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
