// File: protocol/bench_test.go
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for the frame codec and the message stream.

package protocol_test

import (
	"bytes"
	"testing"

	"github.com/momentics/streamws/fake"
	"github.com/momentics/streamws/protocol"
)

// BenchmarkEncodeFrame measures server-side (unmasked) encoding of a
// 1 KiB binary frame into a reused buffer.
func BenchmarkEncodeFrame(b *testing.B) {
	codec := protocol.NewFrameCodec(protocol.RoleServer)
	frame := &protocol.Frame{Opcode: protocol.OpcodeBinary, IsFinal: true, Payload: make([]byte, 1024)}
	dst := make([]byte, 0, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := codec.Encode(dst[:0], frame)
		if err != nil {
			b.Fatal(err)
		}
		dst = out
	}
}

// BenchmarkEncodeMaskedFrame adds key generation and payload masking
// on top of plain encoding.
func BenchmarkEncodeMaskedFrame(b *testing.B) {
	codec := protocol.NewFrameCodec(protocol.RoleClient)
	frame := &protocol.Frame{Opcode: protocol.OpcodeBinary, IsFinal: true, Payload: make([]byte, 1024)}
	dst := make([]byte, 0, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := codec.Encode(dst[:0], frame)
		if err != nil {
			b.Fatal(err)
		}
		dst = out
	}
}

// BenchmarkDecodeFrame measures decoding and unmasking of a masked
// 1 KiB frame.
func BenchmarkDecodeFrame(b *testing.B) {
	enc := protocol.NewFrameCodec(protocol.RoleClient)
	raw, err := enc.Encode(nil, &protocol.Frame{Opcode: protocol.OpcodeBinary, IsFinal: true, Payload: make([]byte, 1024)})
	if err != nil {
		b.Fatal(err)
	}
	dec := protocol.NewFrameCodec(protocol.RoleServer)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		frame, _, err := dec.Decode(raw)
		if err != nil {
			b.Fatal(err)
		}
		if frame == nil {
			b.Fatal("incomplete frame")
		}
	}
}

// BenchmarkStreamEcho pushes a message through write, pipe, and read,
// covering both codec directions and the reassembly path.
func BenchmarkStreamEcho(b *testing.B) {
	clientEnd, serverEnd := fake.Pipe()
	cs := protocol.NewStream(clientEnd, protocol.RoleClient)
	ss := protocol.NewStream(serverEnd, protocol.RoleServer)
	payload := bytes.Repeat([]byte{'x'}, 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cs.WriteMessage(protocol.NewBinaryMessage(payload)); err != nil {
			b.Fatal(err)
		}
		if _, err := ss.ReadMessage(); err != nil {
			b.Fatal(err)
		}
	}
}
