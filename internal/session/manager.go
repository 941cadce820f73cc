package session

import (
	"log/slog"

	"blockbattle/internal/events"
	"blockbattle/internal/network"
	"blockbattle/internal/protocol"
)

// Manager implements network.EventHandler. It owns the peer table and
// the room directory and routes every decoded message to its handler.
// All methods run on the hub goroutine.
type Manager struct {
	peers  map[network.Conn]*Peer
	rooms  *RoomDirectory
	router *router
	log    *slog.Logger
}

func NewManager(pub events.Publisher) *Manager {
	return &Manager{
		peers:  make(map[network.Conn]*Peer),
		rooms:  NewRoomDirectory(pub),
		router: newRouter(),
		log:    slog.Default(),
	}
}

func (m *Manager) OnConnect(c network.Conn) {
	m.peers[c] = newPeer(c, m.log.With("conn", c.ID(), "remote", c.RemoteAddr().String()))
	m.log.Info("peer connected", "conn", c.ID(), "peers", len(m.peers))
}

// OnDisconnect runs the same cleanup as an explicit leave: vacate the
// seat, notify the room, tear the room down if it emptied, and let an
// active session treat the departure as a forced death.
func (m *Manager) OnDisconnect(c network.Conn) {
	p, ok := m.peers[c]
	if !ok {
		return
	}

	m.leaveCurrentRoom(p)
	delete(m.peers, c)
	m.log.Info("peer disconnected", "nickname", p.Nickname, "peers", len(m.peers))
}

func (m *Manager) OnMessage(c network.Conn, msg protocol.Message) {
	p, ok := m.peers[c]
	if !ok {
		return
	}
	m.router.dispatch(m, p, msg)
}

// leaveCurrentRoom removes the peer from its room, if any, announces
// the vacated seat and destroys the room once the last occupant is
// gone.
func (m *Manager) leaveCurrentRoom(p *Peer) {
	if p.RoomID == 0 {
		return
	}
	room, ok := m.rooms.Get(p.RoomID)
	p.RoomID = 0
	if !ok {
		return
	}

	seat := room.Leave(p)
	if seat != noSeat {
		room.Broadcast(protocol.OpLeaveNotice, []byte{byte(seat)}, nil)
	}

	if room.IsEmpty() {
		m.rooms.Remove(room.ID)
	}
}
