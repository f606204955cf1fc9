// File: protocol/closecode.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Close status codes per RFC 6455 section 7.4.

package protocol

import "fmt"

// CloseCode is the status code carried in the payload of a Close frame.
type CloseCode uint16

const (
	CloseNormalClosure           CloseCode = 1000
	CloseGoingAway               CloseCode = 1001
	CloseProtocolError           CloseCode = 1002
	CloseUnsupportedData         CloseCode = 1003
	CloseReserved                CloseCode = 1004
	CloseNoStatusReceived        CloseCode = 1005
	CloseAbnormalClosure         CloseCode = 1006
	CloseInvalidFramePayloadData CloseCode = 1007
	ClosePolicyViolation         CloseCode = 1008
	CloseMessageTooBig           CloseCode = 1009
	CloseMandatoryExtension      CloseCode = 1010
	CloseInternalServerError     CloseCode = 1011
	CloseTLSHandshake            CloseCode = 1015
)

// Allowed reports whether the code may travel in a Close payload.
// Codes the base protocol reserves for signalling absent or abnormal
// status (1004-1006, 1015) never appear on the wire, and neither do
// unassigned codes in the standards range 1000-2999. Registered
// application codes (3000-3999) and private-use codes (4000-4999)
// always may.
func (c CloseCode) Allowed() bool {
	switch {
	case c >= 3000 && c <= 4999:
		return true
	case c < 1000 || c > 2999:
		return false
	}
	switch c {
	case CloseNormalClosure, CloseGoingAway, CloseProtocolError, CloseUnsupportedData,
		CloseInvalidFramePayloadData, ClosePolicyViolation, CloseMessageTooBig,
		CloseMandatoryExtension, CloseInternalServerError:
		return true
	default:
		return false
	}
}

// closeCodeFromWire validates a status code parsed from an inbound
// Close payload. Values outside 1000-4999 have no defined meaning at
// all; values inside the range may still be barred from the wire.
func closeCodeFromWire(v uint16) (CloseCode, error) {
	if v < 1000 || v > 4999 {
		return 0, ErrInvalidCloseCode
	}
	code := CloseCode(v)
	if !code.Allowed() {
		return 0, ErrDisallowedCloseCode
	}
	return code, nil
}

// String returns the registered name of the code, or its number for
// application and private codes.
func (c CloseCode) String() string {
	switch c {
	case CloseNormalClosure:
		return "normal closure"
	case CloseGoingAway:
		return "going away"
	case CloseProtocolError:
		return "protocol error"
	case CloseUnsupportedData:
		return "unsupported data"
	case CloseReserved:
		return "reserved"
	case CloseNoStatusReceived:
		return "no status received"
	case CloseAbnormalClosure:
		return "abnormal closure"
	case CloseInvalidFramePayloadData:
		return "invalid frame payload data"
	case ClosePolicyViolation:
		return "policy violation"
	case CloseMessageTooBig:
		return "message too big"
	case CloseMandatoryExtension:
		return "mandatory extension"
	case CloseInternalServerError:
		return "internal server error"
	case CloseTLSHandshake:
		return "TLS handshake failure"
	default:
		return fmt.Sprintf("close code %d", uint16(c))
	}
}
