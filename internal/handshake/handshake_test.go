package handshake

import (
	"bufio"
	"encoding/base64"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAcceptKey checks the digest against the worked example from
// RFC 6455 section 1.3.
func TestAcceptKey(t *testing.T) {
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestNewKey(t *testing.T) {
	first, err := NewKey()
	require.NoError(t, err)
	second, err := NewKey()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
	assert.NotEqual(t, first, second)
}

func TestHeaderContainsToken(t *testing.T) {
	cases := []struct {
		value string
		token string
		want  bool
	}{
		{"Upgrade", "upgrade", true},
		{"keep-alive, Upgrade", "upgrade", true},
		{"keep-alive,Upgrade", "upgrade", true},
		{"keep-alive", "upgrade", false},
		{"", "upgrade", false},
		{"upgraded", "upgrade", false},
	}
	for _, tc := range cases {
		h := http.Header{}
		if tc.value != "" {
			h.Set("Connection", tc.value)
		}
		assert.Equal(t, tc.want, HeaderContainsToken(h, "Connection", tc.token), "value %q", tc.value)
	}
}

// TestWrapBufferedDrainsLeftover makes sure bytes already sitting in
// the bufio reader come out before fresh connection data does.
func TestWrapBufferedDrainsLeftover(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("buffered"))
		_, _ = client.Write([]byte("fresh"))
	}()

	br := bufio.NewReader(server)
	peeked, err := br.Peek(len("buffered"))
	require.NoError(t, err)
	assert.Equal(t, "buffered", string(peeked))

	wrapped := WrapBuffered(server, br)
	var total []byte
	buf := make([]byte, 4)
	for len(total) < len("bufferedfresh") {
		require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
		n, err := wrapped.Read(buf)
		require.NoError(t, err)
		total = append(total, buf[:n]...)
	}
	assert.Equal(t, "bufferedfresh", string(total))
}

// TestWrapBufferedWithoutLeftover returns the bare connection when the
// reader holds nothing.
func TestWrapBufferedWithoutLeftover(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	wrapped := WrapBuffered(server, bufio.NewReaderSize(server, 16))
	assert.Same(t, server, wrapped)
}
