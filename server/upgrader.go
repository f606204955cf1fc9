// File: server/upgrader.go
// Package server upgrades inbound HTTP requests to WebSocket streams.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Upgrader validates the RFC 6455 opening handshake, takes over the
// TCP connection from net/http, answers with 101 Switching Protocols,
// and hands back a server-role protocol.Stream.

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/momentics/streamws/internal/handshake"
	"github.com/momentics/streamws/protocol"
)

// MaxHandshakeHeadersSize caps the combined length of handshake request
// headers.
const MaxHandshakeHeadersSize = 8192

// Upgrader negotiates WebSocket sessions on inbound HTTP requests.
// The zero value accepts every origin.
type Upgrader struct {
	// CheckOrigin authorizes the request origin. Nil accepts all.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize overrides the stream's initial receive buffer.
	ReadBufferSize int
}

var handshakeResponse = strings.Join([]string{
	"HTTP/1.1 101 Switching Protocols",
	"Upgrade: websocket",
	"Connection: Upgrade",
	"Sec-WebSocket-Accept: %s",
	"",
	"", // terminating CRLF
}, "\r\n")

// Upgrade validates the handshake, hijacks the connection, writes the
// 101 response, and returns a server-role stream. On failure the HTTP
// request is answered with an appropriate status before the error is
// returned, so callers only need to log it.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*protocol.Stream, error) {
	if r.Method != http.MethodGet {
		return nil, reject(w, http.StatusMethodNotAllowed, "handshake request must be GET")
	}

	total := 0
	for k, vs := range r.Header {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
	}
	if total > MaxHandshakeHeadersSize {
		return nil, reject(w, http.StatusRequestHeaderFieldsTooLarge, "handshake headers too large")
	}

	if !handshake.HeaderContainsToken(r.Header, "Connection", "Upgrade") {
		return nil, reject(w, http.StatusBadRequest, "Connection header is missing the Upgrade token")
	}
	if !handshake.HeaderContainsToken(r.Header, "Upgrade", "websocket") {
		return nil, reject(w, http.StatusBadRequest, "Upgrade header is missing the websocket token")
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, reject(w, http.StatusBadRequest, "only WebSocket version 13 is supported")
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, reject(w, http.StatusBadRequest, "Sec-WebSocket-Key header is missing")
	}
	if u.CheckOrigin != nil && !u.CheckOrigin(r) {
		return nil, reject(w, http.StatusForbidden, "origin not allowed")
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		return nil, reject(w, http.StatusInternalServerError, "connection does not support hijacking")
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		return nil, reject(w, http.StatusInternalServerError, err.Error())
	}

	resp := fmt.Sprintf(handshakeResponse, handshake.AcceptKey(key))
	if _, err := conn.Write([]byte(resp)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("write handshake response: %w", err)
	}

	var opts []protocol.StreamOption
	if u.ReadBufferSize > 0 {
		opts = append(opts, protocol.WithReadBufferSize(u.ReadBufferSize))
	}
	transport := handshake.WrapBuffered(conn, rw.Reader)
	return protocol.NewStream(transport, protocol.RoleServer, opts...), nil
}

// reject answers the HTTP request with status and surfaces the reason
// as an error.
func reject(w http.ResponseWriter, status int, reason string) error {
	http.Error(w, reason, status)
	return fmt.Errorf("websocket handshake rejected: %s", reason)
}
