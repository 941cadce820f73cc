package network

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"blockbattle/internal/protocol"
)

const (
	// Outbound frames queued per connection before the peer is
	// considered too slow and dropped.
	sendQueueSize = 256

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ErrSendQueueFull is returned by Send when a client cannot keep up
// with its outbound traffic.
var ErrSendQueueFull = errors.New("network: send queue full")

// transport abstracts the byte stream under a client so the same pumps
// serve plain TCP sockets and WebSocket connections.
type transport interface {
	// ReadChunk returns the next chunk of stream bytes. Chunk
	// boundaries carry no meaning; the packetizer restores frames.
	ReadChunk() ([]byte, error)
	WriteFrame(frame []byte) error
	// Ping sends a transport-level keepalive, if the transport has one.
	Ping() error
	Close() error
	RemoteAddr() net.Addr
}

// Client is one connected player from the server's point of view. Its
// read pump reassembles frames and hands them to the hub; its write
// pump drains the buffered send channel.
type Client struct {
	id         string
	hub        *Hub
	tr         transport
	send       chan []byte
	packetizer protocol.Packetizer
	log        *slog.Logger
}

func newClient(hub *Hub, tr transport) *Client {
	id := uuid.New().String()
	return &Client{
		id:   id,
		hub:  hub,
		tr:   tr,
		send: make(chan []byte, sendQueueSize),
		log:  slog.With("conn", id, "remote", tr.RemoteAddr().String()),
	}
}

func (c *Client) ID() string           { return c.id }
func (c *Client) RemoteAddr() net.Addr { return c.tr.RemoteAddr() }
func (c *Client) Close() error         { return c.tr.Close() }

// Send queues a frame without blocking the hub goroutine.
func (c *Client) Send(frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.tr.Close()
	}()

	for {
		chunk, err := c.tr.ReadChunk()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.log.Debug("connection closed", "error", err)
			}
			return
		}

		c.packetizer.Push(chunk)
		for {
			msg, ok := c.packetizer.Next()
			if !ok {
				break
			}
			c.hub.incoming <- inbound{client: c, msg: msg}
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.tr.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// Hub deregistered us; closing the transport also
				// stops the read pump.
				return
			}
			if err := c.tr.WriteFrame(frame); err != nil {
				c.log.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.tr.Ping(); err != nil {
				return
			}
		}
	}
}
