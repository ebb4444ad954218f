// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/colorg/lib/codec"
)

// ActionFunc handles one action. raw is the complete CBOR request; the
// handler decodes its own fields from it. A nil result produces
// {ok: true} with no data.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the envelope of every reply.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

const (
	readTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
	maxRequestSize = 64 * 1024
)

// Server serves the control protocol on a Unix socket.
type Server struct {
	socketPath string
	handlers   map[string]ActionFunc
	logger     *slog.Logger

	active sync.WaitGroup
}

// NewServer creates a server for socketPath. Register actions with
// Handle before calling Serve.
func NewServer(socketPath string, logger *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handlers:   make(map[string]ActionFunc),
		logger:     logger,
	}
}

// Handle registers handler for action. Panics on a duplicate.
func (s *Server) Handle(action string, handler ActionFunc) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("control.Server: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Serve listens until ctx is cancelled, then waits for in-flight
// requests. A stale socket file from a previous run is replaced, and
// the socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("control socket listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.active.Add(1)
		go func() {
			defer s.active.Done()
			s.serveConnection(ctx, conn)
		}()
	}

	s.active.Wait()
	return nil
}

func (s *Server) serveConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeResponse(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.logger.Debug("rejecting request", "request", describe(raw), "error", err)
		s.writeResponse(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if header.Action == "" {
		s.logger.Debug("rejecting request without action", "request", describe(raw))
		s.writeResponse(conn, Response{Error: "missing required field: action"})
		return
	}

	handler, exists := s.handlers[header.Action]
	if !exists {
		s.logger.Debug("rejecting unknown action", "action", header.Action, "request", describe(raw))
		s.writeResponse(conn, Response{Error: fmt.Sprintf("unknown action %q", header.Action)})
		return
	}

	result, err := handler(ctx, raw)
	if err != nil {
		s.logger.Debug("action failed", "action", header.Action, "error", err)
		s.writeResponse(conn, Response{Error: err.Error()})
		return
	}

	response := Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeResponse(conn, Response{Error: fmt.Sprintf("internal: marshaling response: %v", err)})
			return
		}
		response.Data = data
	}
	s.writeResponse(conn, response)
}

// writeResponse failures are only logged: the connection is closing
// either way.
func (s *Server) writeResponse(conn net.Conn, response Response) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// describe renders a request in CBOR diagnostic notation for debug
// logs, falling back to hex when the bytes are not valid CBOR.
func describe(raw []byte) string {
	if diagnostic, err := codec.Diagnose(raw); err == nil {
		return diagnostic
	}
	return fmt.Sprintf("%x", raw)
}
