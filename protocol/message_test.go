package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClosePayloadRoundTrip checks the two-byte code plus reason
// layout of a close body.
func TestClosePayloadRoundTrip(t *testing.T) {
	msg := NewCloseMessage(CloseNormalClosure, "done")
	payload := msg.encodePayload()
	assert.Equal(t, []byte{0x03, 0xE8, 'd', 'o', 'n', 'e'}, payload)

	parsed, err := messageFromPayload(OpcodeClose, payload)
	require.NoError(t, err)
	require.NotNil(t, parsed.Status)
	assert.Equal(t, CloseNormalClosure, parsed.Status.Code)
	assert.Equal(t, "done", parsed.Status.Reason)
}

func TestBareCloseHasNoStatus(t *testing.T) {
	parsed, err := messageFromPayload(OpcodeClose, nil)
	require.NoError(t, err)
	assert.Equal(t, MessageClose, parsed.Type)
	assert.Nil(t, parsed.Status)

	bare := Message{Type: MessageClose}
	assert.Nil(t, bare.encodePayload())
}

// TestCloseCodeValidation walks the acceptance ranges from RFC 6455
// section 7.4.
func TestCloseCodeValidation(t *testing.T) {
	cases := []struct {
		code uint16
		want error
	}{
		{999, ErrInvalidCloseCode},
		{5000, ErrInvalidCloseCode},
		{65535, ErrInvalidCloseCode},
		{1004, ErrDisallowedCloseCode},
		{1005, ErrDisallowedCloseCode},
		{1006, ErrDisallowedCloseCode},
		{1012, ErrDisallowedCloseCode},
		{1015, ErrDisallowedCloseCode},
		{2999, ErrDisallowedCloseCode},
		{1000, nil},
		{1003, nil},
		{1007, nil},
		{1011, nil},
		{3000, nil},
		{4999, nil},
	}
	for _, tc := range cases {
		payload := []byte{byte(tc.code >> 8), byte(tc.code)}
		_, err := messageFromPayload(OpcodeClose, payload)
		if tc.want == nil {
			assert.NoError(t, err, "code %d", tc.code)
		} else {
			assert.ErrorIs(t, err, tc.want, "code %d", tc.code)
		}
	}
}

func TestTextPayloadMustBeUTF8(t *testing.T) {
	_, err := messageFromPayload(OpcodeText, []byte{0xFF, 0xFE, 0xFD})
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	msg, err := messageFromPayload(OpcodeBinary, []byte{0xFF, 0xFE, 0xFD})
	require.NoError(t, err)
	assert.Equal(t, MessageBinary, msg.Type)
}

func TestCloseReasonMustBeUTF8(t *testing.T) {
	_, err := messageFromPayload(OpcodeClose, []byte{0x03, 0xE8, 0xFF})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestBareContinuationIsNotAMessage(t *testing.T) {
	_, err := messageFromPayload(OpcodeContinuation, []byte("x"))
	assert.ErrorIs(t, err, ErrDisallowedOpcode)
}

func TestMessageTypePredicates(t *testing.T) {
	text := NewTextMessage("hi")
	assert.True(t, text.IsText())
	assert.False(t, text.IsBinary())

	bin := NewBinaryMessage([]byte{1, 2})
	assert.True(t, bin.IsBinary())

	closeMsg := NewCloseMessage(CloseGoingAway, "bye")
	assert.True(t, closeMsg.IsClose())

	ping := NewPingMessage(nil)
	assert.True(t, ping.IsPing())
	assert.False(t, ping.IsPong())

	pong := NewPongMessage(nil)
	assert.True(t, pong.IsPong())
}

// TestMessageText covers the text view of each message type.
func TestMessageText(t *testing.T) {
	text := NewTextMessage("hi")
	got, err := text.Text()
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	binary := NewBinaryMessage([]byte("bytes"))
	got, err = binary.Text()
	require.NoError(t, err)
	assert.Equal(t, "bytes", got)

	invalid := NewBinaryMessage([]byte{0xFF})
	_, err = invalid.Text()
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	ping := NewPingMessage(nil)
	_, err = ping.Text()
	assert.ErrorIs(t, err, ErrMessageNotText)
}
