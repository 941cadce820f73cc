package protocol

import "encoding/binary"

// Packetizer reassembles a raw byte stream into complete frames. TCP
// gives no message boundaries: a single read can carry a fraction of a
// frame or several frames back to back, so arrived bytes are buffered
// until at least one whole frame is present.
type Packetizer struct {
	buf []byte
}

// Push appends a chunk of received bytes to the reassembly buffer.
func (p *Packetizer) Push(data []byte) {
	if len(data) > 0 {
		p.buf = append(p.buf, data...)
	}
}

// Next slices the next complete message out of the buffer. It returns
// false when the buffered bytes do not yet form a whole frame; callers
// drain it in a loop after every Push.
func (p *Packetizer) Next() (Message, bool) {
	for {
		if len(p.buf) < HeaderSize {
			return Message{}, false
		}

		payloadLen := int(binary.BigEndian.Uint16(p.buf[:HeaderSize]))
		if payloadLen == 0 {
			// A frame with no opcode is malformed; skip its header
			// and keep scanning rather than killing the connection.
			p.buf = p.buf[HeaderSize:]
			continue
		}

		total := HeaderSize + payloadLen
		if len(p.buf) < total {
			return Message{}, false
		}

		body := make([]byte, payloadLen-1)
		copy(body, p.buf[HeaderSize+1:total])
		msg := Message{Opcode: p.buf[HeaderSize], Body: body}
		p.buf = p.buf[total:]
		return msg, true
	}
}

// Pending reports whether any unconsumed bytes remain buffered.
func (p *Packetizer) Pending() bool {
	return len(p.buf) > 0
}
