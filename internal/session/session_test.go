package session

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"blockbattle/internal/events"
	"blockbattle/internal/protocol"
)

// fakeConn records every frame sent to it, decoded back into messages.
type fakeConn struct {
	id      string
	sent    []protocol.Message
	closed  bool
	sendErr error
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
}

func (f *fakeConn) Send(frame []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	var p protocol.Packetizer
	p.Push(frame)
	msg, ok := p.Next()
	if !ok {
		panic("fakeConn: partial frame sent")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// byOpcode filters the recorded messages.
func (f *fakeConn) byOpcode(opcode byte) []protocol.Message {
	var out []protocol.Message
	for _, msg := range f.sent {
		if msg.Opcode == opcode {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) last(t *testing.T) protocol.Message {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeConn) reset() { f.sent = nil }

func newTestManager() *Manager {
	return NewManager(events.Nop{})
}

func login(t *testing.T, m *Manager, nickname string) *fakeConn {
	t.Helper()
	c := &fakeConn{id: nickname}
	m.OnConnect(c)
	m.OnMessage(c, protocol.Message{Opcode: protocol.OpLogin, Body: []byte(nickname)})
	result := c.last(t)
	require.Equal(t, protocol.OpLoginResult, result.Opcode)
	require.Equal(t, []byte{0}, result.Body)
	c.reset()
	return c
}

func createRoom(t *testing.T, m *Manager, c *fakeConn, title string) uint16 {
	t.Helper()
	m.OnMessage(c, protocol.Message{Opcode: protocol.OpCreateRoom, Body: []byte(title)})
	result := c.last(t)
	require.Equal(t, protocol.OpCreateRoomResult, result.Opcode)
	require.Equal(t, byte(0), result.Body[0])
	c.reset()
	return binary.BigEndian.Uint16(result.Body[1:])
}

func joinRoom(t *testing.T, m *Manager, c *fakeConn, roomID uint16) protocol.Message {
	t.Helper()
	body := binary.BigEndian.AppendUint16(nil, roomID)
	m.OnMessage(c, protocol.Message{Opcode: protocol.OpJoinRoom, Body: body})
	result := c.last(t)
	require.Equal(t, protocol.OpJoinRoomResult, result.Opcode)
	return result
}

func toggleReady(m *Manager, c *fakeConn) {
	m.OnMessage(c, protocol.Message{Opcode: protocol.OpToggleReady})
}

func reportGameOver(m *Manager, c *fakeConn, score uint32) {
	body := binary.BigEndian.AppendUint32(nil, score)
	m.OnMessage(c, protocol.Message{Opcode: protocol.OpGameOver, Body: body})
}
