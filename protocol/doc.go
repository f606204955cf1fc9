// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the WebSocket wire protocol (RFC 6455) for streamws.
//
// The package turns a raw byte transport into a stream of logical
// messages and back, with strict validation of everything an untrusted
// peer can put on the wire.
//
// Includes:
//   - Role-aware incremental frame codec over caller-managed buffers
//   - Masking with fresh unpredictable per-frame keys
//   - Fragmentation and reassembly with interleaved control frames
//   - Message model with UTF-8 and close-code validation
//   - Closing-handshake state machine with per-role termination rules
package protocol
