// File: protocol/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error taxonomy of the protocol layer. Protocol violations carry the
// close code reported to the peer before the stream goes dark;
// connection errors are local lifecycle guards; transport errors pass
// through the stream untouched.

package protocol

import (
	"errors"
	"fmt"
)

// ProtocolError is a violation of the wire protocol attributable to the
// peer. Code is the close status used for the best-effort notification
// sent before the error surfaces to the caller.
type ProtocolError struct {
	Code   CloseCode
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("websocket protocol violation: %s", e.Reason)
}

// Violations detected while decoding frames.
var (
	ErrInvalidRSV              = &ProtocolError{Code: CloseProtocolError, Reason: "reserved bits set without a negotiated extension"}
	ErrInvalidOpcode           = &ProtocolError{Code: CloseProtocolError, Reason: "opcode has no assigned meaning"}
	ErrFragmentedControl       = &ProtocolError{Code: CloseProtocolError, Reason: "control frame is fragmented"}
	ErrMaskedFrameFromServer   = &ProtocolError{Code: CloseProtocolError, Reason: "server sent a masked frame"}
	ErrUnmaskedFrameFromClient = &ProtocolError{Code: CloseProtocolError, Reason: "client sent an unmasked frame"}
	ErrControlFrameTooLong     = &ProtocolError{Code: CloseProtocolError, Reason: "control frame payload exceeds 125 bytes"}
	ErrInvalidPayloadLength    = &ProtocolError{Code: CloseProtocolError, Reason: "payload length does not fit a valid encoding"}
	ErrInvalidCloseSequence    = &ProtocolError{Code: CloseProtocolError, Reason: "close payload of one byte cannot carry a status code"}
)

// Violations detected while interpreting payloads and reassembling
// messages.
var (
	ErrDisallowedOpcode       = &ProtocolError{Code: CloseProtocolError, Reason: "opcode not allowed for a complete message"}
	ErrUnexpectedContinuation = &ProtocolError{Code: CloseProtocolError, Reason: "continuation frame without a message in progress"}
	ErrUnfinishedMessage      = &ProtocolError{Code: CloseProtocolError, Reason: "new data frame interrupts an unfinished message"}
	ErrInvalidCloseCode       = &ProtocolError{Code: CloseProtocolError, Reason: "close code outside the valid range"}
	ErrDisallowedCloseCode    = &ProtocolError{Code: CloseProtocolError, Reason: "close code must not appear on the wire"}
	ErrInvalidUTF8            = &ProtocolError{Code: CloseInvalidFramePayloadData, Reason: "invalid utf8"}
	ErrMessageNotText         = &ProtocolError{Code: CloseProtocolError, Reason: "message cannot be viewed as text"}
)

// Connection lifecycle errors.
var (
	// ErrAlreadyClosed guards operations on a terminated stream. It is
	// purely local and never contacts the peer.
	ErrAlreadyClosed = errors.New("stream already terminated")

	// ErrConnectionClosed reports the server-side forced termination
	// that follows a completed write once the peer's Close has been
	// received.
	ErrConnectionClosed = errors.New("connection closed")
)
