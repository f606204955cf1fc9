package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCloseHandshakeTransitions drives the lifecycle from both sides.
func TestCloseHandshakeTransitions(t *testing.T) {
	// Peer closes first; our echo must not disturb the state.
	s := stateActive.receivedClose()
	assert.Equal(t, stateClosedByPeer, s)
	s = s.sentClose()
	assert.Equal(t, stateClosedByPeer, s)
	assert.False(t, s.canRead())

	// We close first; the peer's reply acknowledges.
	s = stateActive.sentClose()
	assert.Equal(t, stateClosedByUs, s)
	assert.True(t, s.canRead())
	s = s.receivedClose()
	assert.Equal(t, stateCloseAcknowledged, s)
	assert.False(t, s.canRead())
}

func TestCanReadPerState(t *testing.T) {
	assert.True(t, stateActive.canRead())
	assert.True(t, stateClosedByUs.canRead())
	assert.False(t, stateClosedByPeer.canRead())
	assert.False(t, stateCloseAcknowledged.canRead())
	assert.False(t, stateTerminated.canRead())
}

func TestTerminalStateIsSticky(t *testing.T) {
	assert.Equal(t, stateTerminated, stateTerminated.receivedClose())
	assert.Equal(t, stateTerminated, stateTerminated.sentClose())
}
