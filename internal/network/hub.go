// Package network owns connection handling: the TCP acceptor, an
// optional WebSocket endpoint, per-connection read/write pumps and the
// Hub goroutine that serializes every inbound event. All lobby and
// match state is touched exclusively from the Hub goroutine, so the
// session layer above needs no locks.
package network

import (
	"context"
	"net"

	"blockbattle/internal/protocol"
)

// Conn is the session layer's view of one live connection.
type Conn interface {
	ID() string
	RemoteAddr() net.Addr
	// Send queues one encoded frame for delivery. It never blocks; a
	// full outbound queue is reported as an error so the caller can
	// treat the connection as dead.
	Send(frame []byte) error
	Close() error
}

// EventHandler receives connection lifecycle events and decoded
// messages. All three methods are invoked from the Hub goroutine only.
type EventHandler interface {
	OnConnect(Conn)
	OnDisconnect(Conn)
	OnMessage(Conn, protocol.Message)
}

// inbound pairs a decoded message with the client that sent it.
type inbound struct {
	client *Client
	msg    protocol.Message
}

// Hub tracks the set of live clients and funnels registration,
// deregistration and inbound messages onto a single goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	handler    EventHandler
}

func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound),
		handler:    handler,
	}
}

// Run drives the hub until ctx is cancelled. Channel sends from a
// client's read pump complete only when this loop receives them, which
// yields the ordering guarantees the session layer relies on: messages
// from one connection are handled in arrival order, and no message from
// a connection is handled before its OnConnect or after its
// OnDisconnect.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.Close()
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.handler.OnConnect(c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.handler.OnDisconnect(c)
			}

		case in := <-h.incoming:
			h.handler.OnMessage(in.client, in.msg)
		}
	}
}
