// File: protocol/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Logical message model layered over frames: payload interpretation,
// UTF-8 enforcement for text and close reasons, close status parsing
// and encoding.

package protocol

import (
	"encoding/binary"
	"unicode/utf8"
)

// MessageType enumerates the logical message kinds a stream delivers.
type MessageType uint8

const (
	MessageText MessageType = iota
	MessageBinary
	MessageClose
	MessagePing
	MessagePong
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	case MessageClose:
		return "close"
	case MessagePing:
		return "ping"
	case MessagePong:
		return "pong"
	default:
		return "invalid"
	}
}

// CloseStatus is the optional body of a Close message.
type CloseStatus struct {
	Code   CloseCode
	Reason string
}

// Message is a complete logical message after reassembly. Text payloads
// delivered by a stream are valid UTF-8 by construction. For Close
// messages the parsed status lives in Status and Payload is nil; a bare
// Close carries neither.
type Message struct {
	Type    MessageType
	Payload []byte
	Status  *CloseStatus
}

// NewTextMessage builds a text message from s. The caller is trusted to
// hand over valid UTF-8; inbound validation happens on the receiving
// side.
func NewTextMessage(s string) Message {
	return Message{Type: MessageText, Payload: []byte(s)}
}

// NewBinaryMessage builds a binary message around payload. The slice is
// used as-is, not copied.
func NewBinaryMessage(payload []byte) Message {
	return Message{Type: MessageBinary, Payload: payload}
}

// NewCloseMessage builds a Close message carrying a status code and
// reason.
func NewCloseMessage(code CloseCode, reason string) Message {
	return Message{Type: MessageClose, Status: &CloseStatus{Code: code, Reason: reason}}
}

// NewPingMessage builds a ping carrying payload.
func NewPingMessage(payload []byte) Message {
	return Message{Type: MessagePing, Payload: payload}
}

// NewPongMessage builds a pong carrying payload.
func NewPongMessage(payload []byte) Message {
	return Message{Type: MessagePong, Payload: payload}
}

// Text returns the message body as a string. Text payloads convert
// directly; binary payloads convert after UTF-8 validation; other
// message types cannot be viewed as text.
func (m *Message) Text() (string, error) {
	switch m.Type {
	case MessageText:
		return string(m.Payload), nil
	case MessageBinary:
		if !utf8.Valid(m.Payload) {
			return "", ErrInvalidUTF8
		}
		return string(m.Payload), nil
	default:
		return "", ErrMessageNotText
	}
}

// IsText reports whether the message carries text.
func (m *Message) IsText() bool { return m.Type == MessageText }

// IsBinary reports whether the message carries binary data.
func (m *Message) IsBinary() bool { return m.Type == MessageBinary }

// IsClose reports whether the message is a close notification.
func (m *Message) IsClose() bool { return m.Type == MessageClose }

// IsPing reports whether the message is a ping.
func (m *Message) IsPing() bool { return m.Type == MessagePing }

// IsPong reports whether the message is a pong.
func (m *Message) IsPong() bool { return m.Type == MessagePong }

// opcode returns the wire opcode the message type travels under.
func (m *Message) opcode() Opcode {
	switch m.Type {
	case MessageText:
		return OpcodeText
	case MessageBinary:
		return OpcodeBinary
	case MessageClose:
		return OpcodeClose
	case MessagePing:
		return OpcodePing
	default:
		return OpcodePong
	}
}

// encodePayload renders the message body as frame payload bytes. A
// Close status is the two big-endian code bytes followed by the reason.
func (m *Message) encodePayload() []byte {
	if m.Type != MessageClose {
		return m.Payload
	}
	if m.Status == nil {
		return nil
	}
	buf := make([]byte, 2, 2+len(m.Status.Reason))
	binary.BigEndian.PutUint16(buf, uint16(m.Status.Code))
	return append(buf, m.Status.Reason...)
}

// messageFromPayload interprets a reassembled payload according to the
// opcode of the frame (or fragment sequence) that carried it.
func messageFromPayload(op Opcode, payload []byte) (Message, error) {
	switch op {
	case OpcodeText:
		if !utf8.Valid(payload) {
			return Message{}, ErrInvalidUTF8
		}
		return Message{Type: MessageText, Payload: payload}, nil
	case OpcodeBinary:
		return Message{Type: MessageBinary, Payload: payload}, nil
	case OpcodePing:
		return Message{Type: MessagePing, Payload: payload}, nil
	case OpcodePong:
		return Message{Type: MessagePong, Payload: payload}, nil
	case OpcodeClose:
		if len(payload) == 0 {
			return Message{Type: MessageClose}, nil
		}
		// Frame decoding already rejected one-byte close payloads, so
		// two code bytes are present here.
		code, err := closeCodeFromWire(binary.BigEndian.Uint16(payload))
		if err != nil {
			return Message{}, err
		}
		reason := payload[2:]
		if !utf8.Valid(reason) {
			return Message{}, ErrInvalidUTF8
		}
		return Message{Type: MessageClose, Status: &CloseStatus{Code: code, Reason: string(reason)}}, nil
	default:
		return Message{}, ErrDisallowedOpcode
	}
}
