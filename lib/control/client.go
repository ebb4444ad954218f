// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net"
	"time"

	"github.com/bureau-foundation/colorg/lib/codec"
)

const (
	dialTimeout         = 5 * time.Second
	responseReadTimeout = 30 * time.Second
	maxResponseSize     = 1024 * 1024
)

// Error is a failure reported by the daemon (ok=false). Transport
// failures are returned as plain errors.
type Error struct {
	Action  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("colorg daemon error on %q: %s", e.Action, e.Message)
}

// Client sends control requests, one connection per call.
type Client struct {
	socketPath string
}

// NewClient returns a client for the daemon listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Call sends action with fields and decodes the response data into
// result when both are present. fields must not contain "action".
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	maps.Copy(request, fields)
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, err)
	}
	if !response.OK {
		return &Error{Action: action, Message: response.Error}
	}
	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	deadline := time.Now().Add(responseReadTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)

	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response, nil
}
