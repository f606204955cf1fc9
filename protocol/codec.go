// File: protocol/codec.go
// Package protocol implements an incremental role-aware frame codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Decode consumes whole frames from a caller-managed buffer and reports
// how many bytes it used; an incomplete frame is not an error, it is a
// request for more input. Encode appends wire bytes to a caller-managed
// buffer and masks client-side output with fresh random keys.

package protocol

import (
	"crypto/rand"
	"encoding/binary"
)

// Role fixes which side of the connection a codec or stream speaks for.
// Masking direction and termination behavior depend on it.
type Role uint8

const (
	// RoleClient masks outgoing frames and requires inbound frames to
	// arrive unmasked.
	RoleClient Role = iota
	// RoleServer sends outgoing frames in the clear and requires
	// inbound frames to arrive masked.
	RoleServer
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// FrameCodec encodes and decodes frames for one side of a connection.
type FrameCodec struct {
	role Role
}

// NewFrameCodec returns a codec bound to the given role.
func NewFrameCodec(role Role) *FrameCodec {
	return &FrameCodec{role: role}
}

// Decode parses the first complete frame in raw and returns it together
// with the number of bytes consumed. If raw holds only a partial frame,
// Decode returns (nil, 0, nil); the caller supplies more input and
// retries with the extended buffer. Validation follows the header byte
// order, so a malformed prefix fails before the rest of the frame has
// arrived.
func (c *FrameCodec) Decode(raw []byte) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, nil // Incomplete
	}
	b0, b1 := raw[0], raw[1]

	if b0&rsvBits != 0 {
		return nil, 0, ErrInvalidRSV
	}
	opcode, ok := opcodeFromByte(b0 & 0x0F)
	if !ok {
		return nil, 0, ErrInvalidOpcode
	}
	final := b0&finBit != 0
	if !final && opcode.IsControl() {
		return nil, 0, ErrFragmentedControl
	}

	masked := b1&maskBit != 0
	if masked && c.role == RoleClient {
		return nil, 0, ErrMaskedFrameFromServer
	}
	if !masked && c.role == RoleServer {
		return nil, 0, ErrUnmaskedFrameFromClient
	}

	length := uint64(b1 & 0x7F)
	offset := 2

	// A control frame cannot declare an extended length, so the base
	// value alone decides this check.
	if opcode.IsControl() && length > MaxControlPayload {
		return nil, 0, ErrControlFrameTooLong
	}

	switch length {
	case 126:
		if len(raw) < offset+2 {
			return nil, 0, nil // Incomplete
		}
		length = uint64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case 127:
		if len(raw) < offset+8 {
			return nil, 0, nil // Incomplete
		}
		length = binary.BigEndian.Uint64(raw[offset:])
		if length>>63 != 0 {
			return nil, 0, ErrInvalidPayloadLength
		}
		offset += 8
	}

	var maskKey [4]byte
	if masked {
		if len(raw) < offset+4 {
			return nil, 0, nil // Incomplete
		}
		copy(maskKey[:], raw[offset:offset+4])
		offset += 4
	}

	if uint64(len(raw)-offset) < length {
		return nil, 0, nil // Incomplete
	}
	total := offset + int(length)

	payload := make([]byte, length)
	copy(payload, raw[offset:total])
	if masked {
		applyMask(payload, maskKey)
	}

	// A close status code is two bytes; a single payload byte can never
	// be valid.
	if opcode == OpcodeClose && length == 1 {
		return nil, 0, ErrInvalidCloseSequence
	}

	return &Frame{Opcode: opcode, IsFinal: final, Payload: payload}, total, nil
}

// Encode appends the wire form of f to dst and returns the extended
// slice. Client codecs mask every frame with a fresh key drawn from the
// system CSPRNG; server codecs write payloads in the clear.
func (c *FrameCodec) Encode(dst []byte, f *Frame) ([]byte, error) {
	if err := f.checkControl(); err != nil {
		return nil, err
	}

	b0 := byte(f.Opcode)
	if f.IsFinal {
		b0 |= finBit
	}

	var mb byte
	if c.role == RoleClient {
		mb = maskBit
	}

	plen := len(f.Payload)
	switch {
	case plen <= 125:
		dst = append(dst, b0, byte(plen)|mb)
	case plen <= 0xFFFF:
		dst = append(dst, b0, 126|mb)
		dst = binary.BigEndian.AppendUint16(dst, uint16(plen))
	default:
		dst = append(dst, b0, 127|mb)
		dst = binary.BigEndian.AppendUint64(dst, uint64(plen))
	}

	if c.role != RoleClient {
		return append(dst, f.Payload...), nil
	}

	key, err := newMaskKey()
	if err != nil {
		return nil, err
	}
	dst = append(dst, key[:]...)
	start := len(dst)
	dst = append(dst, f.Payload...)
	applyMask(dst[start:], key)
	return dst, nil
}

// newMaskKey draws a fresh masking key. Keys must be unpredictable to
// peers and intermediaries, so they come from crypto/rand and are never
// reused across frames.
func newMaskKey() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, err
	}
	return key, nil
}
