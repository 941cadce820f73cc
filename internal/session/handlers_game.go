package session

import (
	"encoding/binary"

	"blockbattle/internal/protocol"
)

// seatedRoom resolves the peer's current room and seat. Messages from
// peers that are not seated anywhere are protocol-state violations and
// get dropped by the callers.
func (m *Manager) seatedRoom(p *Peer) (*Room, int, bool) {
	if p.RoomID == 0 {
		return nil, noSeat, false
	}
	room, ok := m.rooms.Get(p.RoomID)
	if !ok {
		return nil, noSeat, false
	}
	seat := room.SeatOf(p)
	if seat == noSeat {
		return nil, noSeat, false
	}
	return room, seat, true
}

// handleToggleReady is overloaded the way the original protocol defines
// it: from a guest it flips the ready flag, from the host it requests a
// match start.
func (m *Manager) handleToggleReady(p *Peer, msg protocol.Message) {
	room, seat, ok := m.seatedRoom(p)
	if !ok {
		return
	}

	if seat == 0 {
		if err := room.StartSession(); err != nil {
			room.log.Debug("host requested start, conditions not met")
		}
		return
	}

	ready := room.ToggleReady(seat)
	state := byte(0)
	if ready {
		state = 1
	}
	room.Broadcast(protocol.OpReadyNotice, []byte{byte(seat), state}, nil)
}

// handleMove relays one input action to everyone else in the room. The
// server does not validate the action against board state; clients
// simulate deterministically from the shared seed.
func (m *Manager) handleMove(p *Peer, msg protocol.Message) {
	room, seat, ok := m.seatedRoom(p)
	if !ok || !room.InMatch() || len(msg.Body) < 1 {
		return
	}
	room.Broadcast(protocol.OpMoveNotice, []byte{byte(seat), msg.Body[0]}, p)
}

func (m *Manager) handleAttack(p *Peer, msg protocol.Message) {
	room, seat, ok := m.seatedRoom(p)
	if !ok || !room.InMatch() || len(msg.Body) < 1 {
		return
	}
	room.Session().HandleAttack(seat, msg.Body[0])
}

// handleGameOver records the sender's own death with its final score.
func (m *Manager) handleGameOver(p *Peer, msg protocol.Message) {
	room, seat, ok := m.seatedRoom(p)
	if !ok || !room.InMatch() || len(msg.Body) < 4 {
		return
	}
	score := binary.BigEndian.Uint32(msg.Body)
	room.Session().ReportDeath(seat, score)
}
