// File: protocol/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Closing-handshake lifecycle. Transitions are the only way stream
// state advances, which keeps the close protocol auditable in one
// place and testable without I/O.

package protocol

// streamState tracks progress of the closing handshake.
type streamState uint8

const (
	// stateActive: no Close frame has travelled in either direction.
	stateActive streamState = iota
	// stateClosedByPeer: the peer sent Close first and our echo answered it.
	stateClosedByPeer
	// stateClosedByUs: we sent Close first and await the peer's reply.
	stateClosedByUs
	// stateCloseAcknowledged: the peer replied to our Close.
	stateCloseAcknowledged
	// stateTerminated: no further operations are permitted.
	stateTerminated
)

// canRead reports whether data may still arrive in this state. Once the
// peer has sent its Close, nothing further follows it.
func (s streamState) canRead() bool {
	return s == stateActive || s == stateClosedByUs
}

// receivedClose advances the state for an inbound Close frame.
func (s streamState) receivedClose() streamState {
	switch s {
	case stateActive:
		return stateClosedByPeer
	case stateClosedByUs:
		return stateCloseAcknowledged
	default:
		return s
	}
}

// sentClose advances the state for an outbound Close frame. Only an
// active stream moves; the echo answering a peer Close must leave
// stateClosedByPeer in place so the read side still reports
// end-of-stream.
func (s streamState) sentClose() streamState {
	if s == stateActive {
		return stateClosedByUs
	}
	return s
}
