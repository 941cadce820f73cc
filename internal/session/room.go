package session

import (
	"errors"
	"log/slog"

	"blockbattle/internal/events"
	"blockbattle/internal/protocol"
)

var errNotStartable = errors.New("session: start conditions not met")

// MaxSeats is the fixed number of seats per room. Seat 0 is the host.
const MaxSeats = 4

// noSeat is the sentinel for "no seat": a full room on enter, or a
// leave whose departure notice was already broadcast.
const noSeat = -1

// Room is a fixed-capacity seating arrangement. Seats and ready flags
// are parallel arrays; ready state is meaningless for the host seat.
// While a game session is active the room accepts no new entrants.
type Room struct {
	ID    uint16
	Title string

	seats   [MaxSeats]*Peer
	ready   [MaxSeats]bool
	session *GameSession

	pub events.Publisher
	log *slog.Logger
}

func newRoom(id uint16, title string, pub events.Publisher) *Room {
	return &Room{
		ID:    id,
		Title: title,
		pub:   pub,
		log:   slog.With("room", id),
	}
}

// InMatch reports whether a game session is currently running.
func (r *Room) InMatch() bool {
	return r.session != nil && r.session.active
}

// Session returns the active game session, or nil.
func (r *Room) Session() *GameSession { return r.session }

// Enter seats the peer at the first free seat, scanning left to right,
// and clears that seat's ready flag. Returns noSeat when the room is
// full. Callers must reject entry while the room is in a match.
func (r *Room) Enter(p *Peer) int {
	for i := range r.seats {
		if r.seats[i] == nil {
			r.seats[i] = p
			r.ready[i] = false
			return i
		}
	}
	return noSeat
}

// Leave vacates the peer's seat. The return value is the seat index the
// caller should announce with a LEAVE_NOTICE, or noSeat when the
// departure was already broadcast here (host departure in an open room,
// where migration emits the notices itself).
//
// A departure during a match is reported to the session as a forced
// death with score 0, and host migration is deferred until the session
// concludes.
func (r *Room) Leave(p *Peer) int {
	seat := r.SeatOf(p)
	if seat == noSeat {
		return noSeat
	}

	wasPlaying := r.InMatch()
	r.seats[seat] = nil
	r.ready[seat] = false

	if wasPlaying {
		r.session.ReportDeath(seat, 0)
		// Even if the session just concluded and migrated the host,
		// the vacated seat still needs its own notice.
		return seat
	}

	if seat == 0 {
		r.Broadcast(protocol.OpLeaveNotice, []byte{0}, nil)
		r.migrateHost()
		return noSeat
	}
	return seat
}

// migrateHost promotes the lowest-indexed occupant to seat 0. The move
// is announced as two discrete events, a leave for the old seat and an
// enter for seat 0, so every client's seat view stays consistent
// without an atomic "move" notice. A room with no other occupants stays
// hostless until the next entrant.
func (r *Room) migrateHost() {
	for i := 1; i < MaxSeats; i++ {
		if r.seats[i] == nil {
			continue
		}
		host := r.seats[i]
		r.seats[0] = host
		r.seats[i] = nil
		r.ready[0] = false
		r.ready[i] = false

		r.Broadcast(protocol.OpLeaveNotice, []byte{byte(i)}, nil)
		r.Broadcast(protocol.OpEnterNotice, append([]byte{0}, []byte(host.Nickname)...), nil)

		r.log.Info("host migrated", "nickname", host.Nickname, "fromSeat", i)
		return
	}
}

// ToggleReady flips the ready flag for a non-host seat and returns the
// new value.
func (r *Room) ToggleReady(seat int) bool {
	if seat <= 0 || seat >= MaxSeats {
		return false
	}
	r.ready[seat] = !r.ready[seat]
	return r.ready[seat]
}

// Ready reports the ready flag for a seat.
func (r *Room) Ready(seat int) bool {
	if seat < 0 || seat >= MaxSeats {
		return false
	}
	return r.ready[seat]
}

// CanStart reports whether a match may begin: no session active, at
// least two occupants, and every occupied guest seat ready. The host
// seat's flag is ignored.
func (r *Room) CanStart() bool {
	if r.InMatch() {
		return false
	}
	if r.OccupantCount() < 2 {
		return false
	}
	for i := 1; i < MaxSeats; i++ {
		if r.seats[i] != nil && !r.ready[i] {
			return false
		}
	}
	return true
}

// StartSession begins a match. Calling it when CanStart is false is a
// caller bug.
func (r *Room) StartSession() error {
	if !r.CanStart() {
		return errNotStartable
	}
	for i := range r.ready {
		r.ready[i] = false
	}
	r.session = newGameSession(r)
	r.session.Start()
	return nil
}

// onSessionEnd is called by the session exactly once, when it
// concludes: the session reference is dropped, ready flags reset, and a
// host migration that was deferred during the match runs now.
func (r *Room) onSessionEnd() {
	r.session = nil
	for i := range r.ready {
		r.ready[i] = false
	}
	if r.seats[0] == nil {
		r.migrateHost()
	}
}

// SeatOf returns the peer's seat index, or noSeat.
func (r *Room) SeatOf(p *Peer) int {
	for i, occupant := range r.seats {
		if occupant == p {
			return i
		}
	}
	return noSeat
}

// PeerAt returns the occupant of a seat, or nil.
func (r *Room) PeerAt(seat int) *Peer {
	if seat < 0 || seat >= MaxSeats {
		return nil
	}
	return r.seats[seat]
}

// occupiedSeats returns the occupied seat indices in ascending order.
func (r *Room) occupiedSeats() []int {
	var seats []int
	for i, p := range r.seats {
		if p != nil {
			seats = append(seats, i)
		}
	}
	return seats
}

func (r *Room) OccupantCount() int {
	n := 0
	for _, p := range r.seats {
		if p != nil {
			n++
		}
	}
	return n
}

func (r *Room) IsEmpty() bool { return r.OccupantCount() == 0 }

// Broadcast sends one frame to every occupant except exclude. Sends
// happen in seat order from the hub goroutine, so all recipients
// observe room broadcasts in the same relative order.
func (r *Room) Broadcast(opcode byte, body []byte, exclude *Peer) {
	for _, p := range r.seats {
		if p != nil && p != exclude {
			p.send(opcode, body)
		}
	}
}
