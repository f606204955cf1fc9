// File: protocol/stream.go
// Package protocol: message stream over a byte transport.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream turns an api.Transport into a sequence of logical messages:
// incremental decode, fragmentation reassembly, automatic control
// replies, outbound chunking, and the closing handshake with its
// per-role termination rules.

package protocol

import (
	"errors"
	"io"
	"sync"

	"github.com/momentics/streamws/api"
)

// FragmentSize is the payload size at which outbound messages split
// into continuation frames.
const FragmentSize = 4096

// defaultReadBufferSize is the initial capacity of the receive buffer.
const defaultReadBufferSize = 4096

// minFill is the smallest spare capacity offered to a transport read.
const minFill = 512

// Stream is a message-oriented WebSocket session over an api.Transport.
//
// A Stream supports one concurrent reader and one concurrent writer;
// the closing-handshake state they share is synchronized internally.
// Concurrent calls to ReadMessage, or concurrent calls to WriteMessage,
// are not safe. The stream applies no timeouts of its own; deadlines
// belong on the transport.
type Stream struct {
	transport api.Transport
	codec     *FrameCodec
	role      Role

	stateMu sync.Mutex
	state   streamState

	// Reader-owned: undecoded transport bytes and the in-progress
	// fragmented message.
	readBuf    []byte
	assembly   []byte
	assemblyOp Opcode // OpcodeContinuation means no message in progress

	// Writer-owned encode scratch, guarded by writeMu together with
	// the transport write itself.
	writeMu  sync.Mutex
	writeBuf []byte
}

// StreamOption customizes stream construction.
type StreamOption func(*Stream)

// WithReadBufferSize sets the initial capacity of the receive buffer.
func WithReadBufferSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.readBuf = make([]byte, 0, n)
		}
	}
}

// NewStream wraps t in a message stream speaking for role.
func NewStream(t api.Transport, role Role, opts ...StreamOption) *Stream {
	s := &Stream{
		transport:  t,
		codec:      NewFrameCodec(role),
		role:       role,
		state:      stateActive,
		assemblyOp: OpcodeContinuation,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.readBuf == nil {
		s.readBuf = make([]byte, 0, defaultReadBufferSize)
	}
	return s
}

// Transport exposes the underlying transport, so callers can close it
// or apply deadlines.
func (s *Stream) Transport() api.Transport {
	return s.transport
}

// Role returns which side of the connection this stream speaks for.
func (s *Stream) Role() Role {
	return s.role
}

// ReadMessage blocks until the next logical message is available. It
// reassembles fragmented messages, answers pings with pongs, echoes the
// first peer Close, and reports a cleanly closed stream with io.EOF.
//
// A protocol violation by the peer sends a best-effort Close
// notification, terminates the stream, and surfaces as the violation
// itself. Transport errors pass through unchanged.
func (s *Stream) ReadMessage() (Message, error) {
	s.stateMu.Lock()
	st := s.state
	s.stateMu.Unlock()
	switch {
	case st == stateTerminated:
		return Message{}, ErrAlreadyClosed
	case !st.canRead():
		return Message{}, io.EOF
	}

	msg, err := s.readMessage()
	if err == nil {
		return msg, nil
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		s.failWith(pe)
	}
	return Message{}, err
}

// readMessage pulls frames until one logical message completes.
// Control frames interleaved with a fragmented message are delivered
// immediately without disturbing reassembly.
func (s *Stream) readMessage() (Message, error) {
	for {
		frame, err := s.nextFrame()
		if err != nil {
			return Message{}, err
		}
		if frame.Opcode.IsControl() {
			return s.handleControl(frame)
		}

		switch {
		case s.assemblyOp == OpcodeContinuation:
			if frame.Opcode == OpcodeContinuation {
				return Message{}, ErrUnexpectedContinuation
			}
			if frame.IsFinal {
				return messageFromPayload(frame.Opcode, frame.Payload)
			}
			s.assemblyOp = frame.Opcode
			s.assembly = append(s.assembly[:0], frame.Payload...)
		case frame.Opcode != OpcodeContinuation:
			return Message{}, ErrUnfinishedMessage
		default:
			s.assembly = append(s.assembly, frame.Payload...)
			if frame.IsFinal {
				op, payload := s.assemblyOp, s.assembly
				s.assemblyOp, s.assembly = OpcodeContinuation, nil
				return messageFromPayload(op, payload)
			}
		}
	}
}

// handleControl reacts to a control frame and delivers it as a message.
// Pings are answered with an identical pong. The first peer Close is
// echoed back; on a server the echo completes the handshake, so its
// expected ErrConnectionClosed is swallowed here and termination shows
// up on the next operation instead of hiding the delivered message.
func (s *Stream) handleControl(f *Frame) (Message, error) {
	msg, err := messageFromPayload(f.Opcode, f.Payload)
	if err != nil {
		return Message{}, err
	}
	switch f.Opcode {
	case OpcodePing:
		if err := s.writeFrame(&Frame{Opcode: OpcodePong, IsFinal: true, Payload: f.Payload}); err != nil {
			return Message{}, err
		}
	case OpcodeClose:
		s.stateMu.Lock()
		echo := s.state == stateActive
		s.state = s.state.receivedClose()
		s.stateMu.Unlock()
		if echo {
			err := s.writeFrame(&Frame{Opcode: OpcodeClose, IsFinal: true, Payload: f.Payload})
			if err != nil && !errors.Is(err, ErrConnectionClosed) {
				return Message{}, err
			}
		}
	}
	return msg, nil
}

// nextFrame decodes one frame, pulling more transport bytes as needed.
func (s *Stream) nextFrame() (*Frame, error) {
	for {
		if len(s.readBuf) > 0 {
			frame, n, err := s.codec.Decode(s.readBuf)
			if err != nil {
				return nil, err
			}
			if frame != nil {
				rest := copy(s.readBuf, s.readBuf[n:])
				s.readBuf = s.readBuf[:rest]
				return frame, nil
			}
		}
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
}

// fill performs one transport read into the spare capacity of the
// receive buffer, growing it when nearly full. End of input with a
// partial frame buffered means the peer vanished mid-frame.
func (s *Stream) fill() error {
	if cap(s.readBuf)-len(s.readBuf) < minFill {
		grown := make([]byte, len(s.readBuf), 2*cap(s.readBuf)+minFill)
		copy(grown, s.readBuf)
		s.readBuf = grown
	}
	n, err := s.transport.Read(s.readBuf[len(s.readBuf):cap(s.readBuf)])
	s.readBuf = s.readBuf[:len(s.readBuf)+n]
	if n > 0 {
		// Deliver what arrived; a pending error resurfaces on the
		// next empty read.
		return nil
	}
	if err == nil {
		return nil
	}
	if err == io.EOF {
		if len(s.readBuf) == 0 {
			return io.EOF
		}
		return io.ErrUnexpectedEOF
	}
	return err
}

// WriteMessage sends msg, splitting data payloads larger than
// FragmentSize into continuation frames. Control messages always travel
// as a single frame.
//
// On a server stream, the write that completes the closing handshake
// closes the transport and reports ErrConnectionClosed.
func (s *Stream) WriteMessage(msg Message) error {
	s.stateMu.Lock()
	terminated := s.state == stateTerminated
	s.stateMu.Unlock()
	if terminated {
		return ErrAlreadyClosed
	}
	if msg.Type == MessageClose && msg.Status != nil && !msg.Status.Code.Allowed() {
		return ErrDisallowedCloseCode
	}

	op := msg.opcode()
	payload := msg.encodePayload()

	if op.IsControl() {
		if err := s.writeFrame(&Frame{Opcode: op, IsFinal: true, Payload: payload}); err != nil {
			return err
		}
		if op == OpcodeClose {
			s.stateMu.Lock()
			s.state = s.state.sentClose()
			s.stateMu.Unlock()
		}
		return nil
	}

	first := true
	for {
		chunk := payload
		if len(chunk) > FragmentSize {
			chunk = payload[:FragmentSize]
		}
		payload = payload[len(chunk):]

		frameOp := op
		if !first {
			frameOp = OpcodeContinuation
		}
		frame := &Frame{Opcode: frameOp, IsFinal: len(payload) == 0, Payload: chunk}
		if err := s.writeFrame(frame); err != nil {
			return err
		}
		first = false
		if len(payload) == 0 {
			return nil
		}
	}
}

// Close sends a Close message with the given status, starting (or, if
// the peer already closed, finishing) the closing handshake. Use code
// zero to send a bare Close without a status body.
func (s *Stream) Close(code CloseCode, reason string) error {
	if code == 0 {
		return s.WriteMessage(Message{Type: MessageClose})
	}
	return s.WriteMessage(NewCloseMessage(code, reason))
}

// writeFrame encodes f and pushes it through the transport, then
// applies the server-side termination rule: once a completed write
// leaves a server stream unable to read, the session is over and the
// transport is closed for good.
func (s *Stream) writeFrame(f *Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	buf, err := s.codec.Encode(s.writeBuf[:0], f)
	if err != nil {
		return err
	}
	s.writeBuf = buf
	if _, err := s.transport.Write(buf); err != nil {
		return err
	}

	if s.role != RoleServer {
		return nil
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != stateTerminated && !s.state.canRead() {
		s.state = stateTerminated
		_ = s.transport.Close()
		return ErrConnectionClosed
	}
	return nil
}

// failWith notifies the peer about a protocol violation before the
// stream goes dark. The notification is best effort; the violation
// itself is what the caller sees.
func (s *Stream) failWith(pe *ProtocolError) {
	s.stateMu.Lock()
	terminated := s.state == stateTerminated
	s.stateMu.Unlock()
	if !terminated {
		notice := NewCloseMessage(pe.Code, pe.Reason)
		_ = s.writeFrame(&Frame{Opcode: OpcodeClose, IsFinal: true, Payload: notice.encodePayload()})
	}
	s.stateMu.Lock()
	s.state = stateTerminated
	s.stateMu.Unlock()
	_ = s.transport.Close()
}
