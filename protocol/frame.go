// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame model and the structural limits every frame must satisfy before
// its payload is interpreted.

package protocol

// Header layout per RFC 6455 section 5.2.
const (
	finBit  = 0x80 // high bit of byte 0
	rsvBits = 0x70 // extension bits, must be zero
	maskBit = 0x80 // high bit of byte 1

	// MaxControlPayload is the largest payload a control frame may carry.
	MaxControlPayload = 125

	// MaxHeaderSize is the worst-case encoded header length: two fixed
	// bytes, an eight-byte extended length, and a four-byte masking key.
	MaxHeaderSize = 14
)

// Frame is a single decoded WebSocket frame. Payload of a frame decoded
// from the wire is already unmasked.
type Frame struct {
	Opcode  Opcode
	IsFinal bool
	Payload []byte
}

// checkControl enforces the structural limits on control frames: they
// may not be fragmented and their payload may not exceed
// MaxControlPayload.
func (f *Frame) checkControl() error {
	if !f.Opcode.IsControl() {
		return nil
	}
	if !f.IsFinal {
		return ErrFragmentedControl
	}
	if len(f.Payload) > MaxControlPayload {
		return ErrControlFrameTooLong
	}
	return nil
}

// applyMask XORs buf with the masking key. Masking is an involution, so
// the same call both masks and unmasks.
func applyMask(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}
