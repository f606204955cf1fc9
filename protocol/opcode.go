// File: protocol/opcode.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame opcodes per RFC 6455 section 5.2.

package protocol

import "fmt"

// Opcode identifies how a frame's payload is interpreted.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// opcodeFromByte maps the low nibble of the first header byte to an
// Opcode. Values without an assigned meaning are rejected.
func opcodeFromByte(b byte) (Opcode, bool) {
	switch op := Opcode(b); op {
	case OpcodeContinuation, OpcodeText, OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
		return op, true
	default:
		return 0, false
	}
}

// IsControl reports whether the opcode denotes a control frame.
// Control opcodes have the high bit of the nibble set.
func (op Opcode) IsControl() bool {
	return op&0x8 != 0
}

// String returns the opcode name for logs and error messages.
func (op Opcode) String() string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("unknown(0x%X)", byte(op))
	}
}
