// Package session holds the authoritative lobby and match state: peers,
// rooms, the room directory, game sessions and the message handlers
// that mutate them. Everything in this package runs on the hub
// goroutine; see internal/network.
package session

import (
	"log/slog"

	"blockbattle/internal/network"
	"blockbattle/internal/protocol"
)

// Peer is the server-side identity for one live connection: a nickname,
// an authentication flag and the room it currently sits in. RoomID is 0
// while the peer is not seated; room ids start at 1.
type Peer struct {
	conn network.Conn
	log  *slog.Logger

	Nickname      string
	Authenticated bool
	RoomID        uint16
}

func newPeer(conn network.Conn, log *slog.Logger) *Peer {
	return &Peer{
		conn:     conn,
		log:      log,
		Nickname: "Unknown",
	}
}

// send encodes and queues one frame. A failed send means the peer
// cannot be reached anymore; closing the transport routes the
// connection through the normal disconnect cleanup.
func (p *Peer) send(opcode byte, body []byte) {
	if err := p.conn.Send(protocol.Encode(opcode, body)); err != nil {
		p.log.Warn("send failed, dropping connection", "opcode", opcode, "error", err)
		p.conn.Close()
	}
}
