package session

import (
	"encoding/binary"
	"unicode/utf8"

	"blockbattle/internal/protocol"
)

// handleSearchRoom answers with the room listing:
// [count:u8] then per room [id:u16][status:u8][titleLen:u8][title].
// Status 1 marks a room whose match is running.
func (m *Manager) handleSearchRoom(p *Peer, msg protocol.Message) {
	if !p.Authenticated {
		return
	}

	rooms := m.rooms.All()
	if len(rooms) > 255 {
		rooms = rooms[:255]
	}

	body := []byte{byte(len(rooms))}
	for _, room := range rooms {
		body = binary.BigEndian.AppendUint16(body, room.ID)

		status := byte(0)
		if room.InMatch() {
			status = 1
		}
		body = append(body, status)

		title := []byte(room.Title)
		if len(title) > 255 {
			title = title[:255]
		}
		body = append(body, byte(len(title)))
		body = append(body, title...)
	}

	p.send(protocol.OpSearchRoom, body)
}

// handleCreateRoom creates a room and seats the creator in it. The
// creator receives CREATE_ROOM_RESULT and switches to the room view
// without a separate join round-trip.
func (m *Manager) handleCreateRoom(p *Peer, msg protocol.Message) {
	if !p.Authenticated || p.RoomID != 0 {
		return
	}
	if !utf8.Valid(msg.Body) {
		p.log.Warn("invalid room title encoding, create dropped")
		return
	}

	room := m.rooms.Create(string(msg.Body))

	result := []byte{0}
	result = binary.BigEndian.AppendUint16(result, room.ID)
	p.send(protocol.OpCreateRoomResult, result)

	room.Enter(p)
	p.RoomID = room.ID
	p.log.Info("room created", "room", room.ID, "title", room.Title)
}

func (m *Manager) handleJoinRoom(p *Peer, msg protocol.Message) {
	if !p.Authenticated || p.RoomID != 0 || len(msg.Body) < 2 {
		return
	}

	roomID := binary.BigEndian.Uint16(msg.Body)
	room, ok := m.rooms.Get(roomID)
	if !ok {
		p.send(protocol.OpJoinRoomResult, []byte{protocol.JoinNotFound, 0})
		return
	}
	if room.InMatch() {
		p.send(protocol.OpJoinRoomResult, []byte{protocol.JoinInMatch, 0})
		return
	}

	seat := room.Enter(p)
	if seat == noSeat {
		p.send(protocol.OpJoinRoomResult, []byte{protocol.JoinFull, 0})
		return
	}
	p.RoomID = room.ID
	p.log.Info("joined room", "nickname", p.Nickname, "room", room.ID, "seat", seat)

	p.send(protocol.OpJoinRoomResult, []byte{protocol.JoinOK, byte(seat)})
	room.Broadcast(protocol.OpEnterNotice, append([]byte{byte(seat)}, []byte(p.Nickname)...), p)
}

func (m *Manager) handleLeaveRoom(p *Peer, msg protocol.Message) {
	if p.RoomID == 0 {
		return
	}
	p.log.Info("left room", "nickname", p.Nickname, "room", p.RoomID)
	m.leaveCurrentRoom(p)
}

// handleRoomInfo replays the current seat snapshot to the requester as
// a sequence of ENTER_NOTICE frames, plus a READY_NOTICE for every seat
// that is ready.
func (m *Manager) handleRoomInfo(p *Peer, msg protocol.Message) {
	if p.RoomID == 0 {
		return
	}
	room, ok := m.rooms.Get(p.RoomID)
	if !ok {
		return
	}

	for _, seat := range room.occupiedSeats() {
		occupant := room.PeerAt(seat)
		p.send(protocol.OpEnterNotice, append([]byte{byte(seat)}, []byte(occupant.Nickname)...))
		if room.Ready(seat) {
			p.send(protocol.OpReadyNotice, []byte{byte(seat), 1})
		}
	}
}
