// File: client/dialer.go
// Package client establishes outbound WebSocket connections.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dialer opens ws:// and wss:// URLs: TCP connect, optional TLS, the
// RFC 6455 upgrade request with a fresh random key, and strict
// verification of the 101 response, producing a client-role
// protocol.Stream.

package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/momentics/streamws/internal/handshake"
	"github.com/momentics/streamws/protocol"
)

// Dialer holds client handshake settings. The zero value is usable.
type Dialer struct {
	// HandshakeTimeout bounds dialing and the upgrade exchange.
	HandshakeTimeout time.Duration

	// TLSConfig is cloned for wss connections. Nil means defaults,
	// with the server name taken from the URL.
	TLSConfig *tls.Config

	// Header is copied into the handshake request, for cookies or
	// authorization.
	Header http.Header

	// ReadBufferSize overrides the stream's initial receive buffer.
	ReadBufferSize int
}

// Dial connects with a background context.
func (d *Dialer) Dial(urlStr string) (*protocol.Stream, error) {
	return d.DialContext(context.Background(), urlStr)
}

// DialContext connects to a ws or wss URL and completes the opening
// handshake.
func (d *Dialer) DialContext(ctx context.Context, urlStr string) (*protocol.Stream, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported url scheme %q (want ws or wss)", u.Scheme)
	}

	if d.HandshakeTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.HandshakeTimeout)
		defer cancel()
	}

	key, err := handshake.NewKey()
	if err != nil {
		return nil, err
	}
	req, err := d.upgradeRequest(ctx, u, key)
	if err != nil {
		return nil, err
	}

	conn, err := d.dialConn(ctx, u)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := req.Write(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	br := bufio.NewReader(conn)
	if err := verifyResponse(br, req, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("websocket handshake failed: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})

	var opts []protocol.StreamOption
	if d.ReadBufferSize > 0 {
		opts = append(opts, protocol.WithReadBufferSize(d.ReadBufferSize))
	}
	transport := handshake.WrapBuffered(conn, br)
	return protocol.NewStream(transport, protocol.RoleClient, opts...), nil
}

// upgradeRequest builds the handshake GET request for u carrying key.
func (d *Dialer) upgradeRequest(ctx context.Context, u *url.URL, key string) (*http.Request, error) {
	reqURL := *u
	if u.Scheme == "wss" {
		reqURL.Scheme = "https"
	} else {
		reqURL.Scheme = "http"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range d.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Key", key)
	req.Header.Set("Sec-WebSocket-Version", "13")
	return req, nil
}

// dialConn opens the TCP connection, wrapped in TLS for wss URLs.
func (d *Dialer) dialConn(ctx context.Context, u *url.URL) (net.Conn, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", hostPort(u))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "wss" {
		return conn, nil
	}

	cfg := &tls.Config{}
	if d.TLSConfig != nil {
		cfg = d.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = u.Hostname()
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// hostPort completes the dial address with the scheme's default port
// when the URL does not name one.
func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "wss" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}

// verifyResponse reads the server's answer and checks every handshake
// requirement, including the accept digest for the key we sent.
func verifyResponse(r *bufio.Reader, req *http.Request, key string) error {
	resp, err := http.ReadResponse(r, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		return fmt.Errorf("unexpected status %q", resp.Status)
	}
	if !handshake.HeaderContainsToken(resp.Header, "Upgrade", "websocket") {
		return fmt.Errorf("response Upgrade header is missing the websocket token")
	}
	if !handshake.HeaderContainsToken(resp.Header, "Connection", "Upgrade") {
		return fmt.Errorf("response Connection header is missing the Upgrade token")
	}
	if resp.Header.Get("Sec-WebSocket-Accept") != handshake.AcceptKey(key) {
		return fmt.Errorf("Sec-WebSocket-Accept does not match the sent key")
	}
	return nil
}
