// File: api/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the byte-stream abstraction the protocol layer runs over,
// decoupling frame logic from sockets, TLS, and test harnesses.

package api

// Transport abstracts a full-duplex, ordered, reliable byte stream.
// Read and Write follow the io.Reader and io.Writer contracts; Read
// returns io.EOF once the peer has finished sending. A net.Conn
// satisfies Transport directly.
type Transport interface {
	// Read fills p with the next available bytes from the peer.
	Read(p []byte) (n int, err error)

	// Write pushes p toward the peer, blocking until the transport
	// accepts it.
	Write(p []byte) (n int, err error)

	// Close releases the underlying connection resources.
	Close() error
}
