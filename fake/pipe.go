// File: fake/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffered in-process pipe connecting two api.Transport endpoints.
// Unlike net.Pipe, writes never block, so a single goroutine can drive
// both ends of a conversation in sequence.

package fake

import (
	"io"
	"sync"

	"github.com/momentics/streamws/api"
)

// PipeEnd is one endpoint of an in-memory duplex pipe.
type PipeEnd struct {
	shared *pipeShared
	self   int // index of this end in the shared arrays
	peer   int
}

type pipeShared struct {
	mu     sync.Mutex
	cond   *sync.Cond
	inbox  [2][]byte // inbox[i] holds bytes readable by end i
	closed [2]bool
}

// Pipe returns two connected transports. Bytes written to one end
// become readable on the other. Reads block until data arrives or the
// writing side closes.
func Pipe() (*PipeEnd, *PipeEnd) {
	shared := &pipeShared{}
	shared.cond = sync.NewCond(&shared.mu)
	a := &PipeEnd{shared: shared, self: 0, peer: 1}
	b := &PipeEnd{shared: shared, self: 1, peer: 0}
	return a, b
}

// Read blocks until the inbox holds data, the peer closes (io.EOF once
// drained), or this end closes.
func (p *PipeEnd) Read(b []byte) (int, error) {
	s := p.shared
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.inbox[p.self]) == 0 {
		if s.closed[p.self] {
			return 0, api.ErrTransportClosed
		}
		if s.closed[p.peer] {
			return 0, io.EOF
		}
		s.cond.Wait()
	}
	n := copy(b, s.inbox[p.self])
	s.inbox[p.self] = s.inbox[p.self][n:]
	return n, nil
}

// Write appends b to the peer's inbox without blocking.
func (p *PipeEnd) Write(b []byte) (int, error) {
	s := p.shared
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed[p.self] {
		return 0, api.ErrTransportClosed
	}
	if s.closed[p.peer] {
		return 0, io.ErrClosedPipe
	}
	s.inbox[p.peer] = append(s.inbox[p.peer], b...)
	s.cond.Broadcast()
	return len(b), nil
}

// Close shuts this end down and wakes blocked readers on both sides.
// The peer may still drain what was written before the close.
func (p *PipeEnd) Close() error {
	s := p.shared
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed[p.self] = true
	s.cond.Broadcast()
	return nil
}

var _ api.Transport = (*PipeEnd)(nil)
