package protocol

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of the length prefix. The length field counts
// the opcode byte plus the body, so a full frame occupies
// HeaderSize + 1 + len(body) bytes.
const HeaderSize = 2

// MaxBodySize is the largest body that still fits the 16-bit length
// field together with the opcode byte.
const MaxBodySize = 0xFFFF - 1

// Message is one decoded frame: an opcode and its opaque body.
type Message struct {
	Opcode byte
	Body   []byte
}

// Encode serializes one frame. Encoding is a pure function of
// (opcode, body); a body that cannot be represented in the 16-bit
// length field is a caller bug and panics rather than producing a
// corrupt frame.
func Encode(opcode byte, body []byte) []byte {
	if len(body) > MaxBodySize {
		panic(fmt.Sprintf("protocol: body of %d bytes exceeds the 16-bit frame limit", len(body)))
	}

	frame := make([]byte, HeaderSize+1+len(body))
	binary.BigEndian.PutUint16(frame, uint16(1+len(body)))
	frame[HeaderSize] = opcode
	copy(frame[HeaderSize+1:], body)
	return frame
}
