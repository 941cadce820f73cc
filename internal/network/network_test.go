package network

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockbattle/internal/protocol"
)

// collectHandler forwards hub callbacks onto channels so tests can
// observe them without racing the hub goroutine.
type collectHandler struct {
	connected    chan Conn
	disconnected chan Conn
	messages     chan protocol.Message
}

func newCollectHandler() *collectHandler {
	return &collectHandler{
		connected:    make(chan Conn, 8),
		disconnected: make(chan Conn, 8),
		messages:     make(chan protocol.Message, 64),
	}
}

func (h *collectHandler) OnConnect(c Conn)    { h.connected <- c }
func (h *collectHandler) OnDisconnect(c Conn) { h.disconnected <- c }
func (h *collectHandler) OnMessage(c Conn, msg protocol.Message) {
	h.messages <- msg
}

func localPipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestPipelineDeliversFramesInOrder(t *testing.T) {
	handler := newCollectHandler()
	hub := NewHub(handler)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := NewServer(hub)
	client, server := localPipe(t)
	srv.attach(&tcpTransport{conn: server})

	conn := recv(t, handler.connected, "connect")
	assert.NotEmpty(t, conn.ID())

	// Two frames written as one chunk, a third split mid-header:
	// boundaries must not matter.
	var stream []byte
	stream = append(stream, protocol.Encode(protocol.OpLogin, []byte("alice"))...)
	stream = append(stream, protocol.Encode(protocol.OpMove, []byte{1})...)
	third := protocol.Encode(protocol.OpMove, []byte{2})
	stream = append(stream, third[:1]...)

	_, err := client.Write(stream)
	require.NoError(t, err)
	_, err = client.Write(third[1:])
	require.NoError(t, err)

	msg := recv(t, handler.messages, "first message")
	assert.Equal(t, protocol.OpLogin, msg.Opcode)
	assert.Equal(t, []byte("alice"), msg.Body)

	msg = recv(t, handler.messages, "second message")
	assert.Equal(t, []byte{1}, msg.Body)

	msg = recv(t, handler.messages, "third message")
	assert.Equal(t, []byte{2}, msg.Body)

	// Closing the peer side surfaces as a disconnect.
	client.Close()
	recv(t, handler.disconnected, "disconnect")
}

func TestSendReachesPeer(t *testing.T) {
	handler := newCollectHandler()
	hub := NewHub(handler)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := NewServer(hub)
	client, server := localPipe(t)
	srv.attach(&tcpTransport{conn: server})
	conn := recv(t, handler.connected, "connect")

	frame := protocol.Encode(protocol.OpLoginResult, []byte{0})
	require.NoError(t, conn.Send(frame))

	got := make([]byte, len(frame))
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := io.ReadFull(client, got)
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestHubShutdownClosesClients(t *testing.T) {
	handler := newCollectHandler()
	hub := NewHub(handler)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := NewServer(hub)
	client, server := localPipe(t)
	srv.attach(&tcpTransport{conn: server})
	recv(t, handler.connected, "connect")

	cancel()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err := client.Read(buf)
	assert.Error(t, err, "peer side should see the connection drop")
}
