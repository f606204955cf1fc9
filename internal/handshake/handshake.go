// File: internal/handshake/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared pieces of the RFC 6455 opening handshake: key generation, the
// accept digest, token matching in comma-separated header values, and
// carrying bytes the HTTP parser read past the handshake.

package handshake

import (
	"bufio"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"net"
	"net/http"
	"strings"
)

// websocketGUID is the fixed GUID appended to the client key before
// hashing, per RFC 6455 section 1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// NewKey returns a fresh base64-encoded 16-byte Sec-WebSocket-Key.
func NewKey() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// AcceptKey computes the Sec-WebSocket-Accept digest for a client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// HeaderContainsToken reports whether the named header contains token
// in any of its comma-separated values, case-insensitively.
func HeaderContainsToken(h http.Header, name, token string) bool {
	for _, v := range h[http.CanonicalHeaderKey(name)] {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// WrapBuffered returns conn unless r still holds bytes read past the
// handshake, in which case it returns a connection that drains those
// bytes before touching the network again.
func WrapBuffered(conn net.Conn, r *bufio.Reader) net.Conn {
	if r == nil || r.Buffered() == 0 {
		return conn
	}
	return &bufferedConn{Conn: conn, r: r}
}

// bufferedConn serves leftover parser bytes ahead of the socket.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	if c.r.Buffered() > 0 {
		return c.r.Read(p)
	}
	return c.Conn.Read(p)
}
