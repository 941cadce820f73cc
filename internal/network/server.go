package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const readBufferSize = 4096

// Server accepts raw TCP connections and attaches them to the hub.
type Server struct {
	hub *Hub
	log *slog.Logger
}

func NewServer(hub *Hub) *Server {
	return &Server{hub: hub, log: slog.Default()}
}

// ListenTCP accepts connections on addr until ctx is cancelled. It
// blocks; run it on its own goroutine.
func (s *Server) ListenTCP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("listening", "addr", ln.Addr().String(), "transport", "tcp")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.attach(&tcpTransport{conn: conn})
	}
}

// attach registers a transport with the hub and starts its pumps. The
// registration send completes before the pumps start, so OnConnect is
// always handled before the connection's first message.
func (s *Server) attach(tr transport) {
	c := newClient(s.hub, tr)
	s.hub.register <- c
	go c.writeLoop()
	go c.readLoop()
	c.log.Info("client connected")
}

// tcpTransport adapts a net.Conn to the transport interface.
type tcpTransport struct {
	conn net.Conn
	buf  [readBufferSize]byte
}

func (t *tcpTransport) ReadChunk() ([]byte, error) {
	n, err := t.conn.Read(t.buf[:])
	if n > 0 {
		// Deliver what arrived; a pending error resurfaces on the
		// next read.
		return t.buf[:n], nil
	}
	return nil, err
}

func (t *tcpTransport) WriteFrame(frame []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_, err := t.conn.Write(frame)
	return err
}

// Ping is a no-op: the plain TCP path has no protocol-level keepalive,
// dead peers are only reclaimed when the transport reports closure.
func (t *tcpTransport) Ping() error { return nil }

func (t *tcpTransport) Close() error { return t.conn.Close() }

func (t *tcpTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }
