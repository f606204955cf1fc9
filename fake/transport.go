// Package fake
// Author: momentics <momentics@gmail.com>
//
// In-memory api.Transport implementations for tests: a scriptable
// endpoint with inspectable output and injectable failures, plus a
// connected in-process pipe.

package fake

import (
	"io"
	"sync"

	"github.com/momentics/streamws/api"
)

// Transport is a scriptable in-memory api.Transport. Reads drain data
// queued with FeedRead and report io.EOF once it runs out, mirroring a
// peer that has finished sending. Writes accumulate for inspection with
// Sent. The zero value is ready to use.
type Transport struct {
	mu       sync.Mutex
	readBuf  []byte
	sent     []byte
	closed   bool
	readErr  error
	writeErr error
}

// NewTransport creates an empty fake transport.
func NewTransport() *Transport {
	return &Transport{}
}

// FeedRead queues data for subsequent Read calls.
func (t *Transport) FeedRead(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readBuf = append(t.readBuf, data...)
}

// Read drains queued data. io.EOF with nothing queued, the configured
// read error once the queue is empty, api.ErrTransportClosed after
// Close.
func (t *Transport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, api.ErrTransportClosed
	}
	if len(t.readBuf) == 0 {
		if t.readErr != nil {
			return 0, t.readErr
		}
		return 0, io.EOF
	}
	n := copy(p, t.readBuf)
	t.readBuf = t.readBuf[n:]
	return n, nil
}

// Write appends p to the sent log.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, api.ErrTransportClosed
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	t.sent = append(t.sent, p...)
	return len(p), nil
}

// Close marks the transport closed. Later reads and writes fail with
// api.ErrTransportClosed.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Sent returns a copy of everything written so far.
func (t *Transport) Sent() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, len(t.sent))
	copy(out, t.sent)
	return out
}

// ClearSent discards the sent log.
func (t *Transport) ClearSent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = t.sent[:0]
}

// SetReadError makes Read fail with err once the queued data is gone.
func (t *Transport) SetReadError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr = err
}

// SetWriteError makes every subsequent Write fail with err.
func (t *Transport) SetWriteError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}
