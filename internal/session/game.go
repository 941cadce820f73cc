package session

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"

	"blockbattle/internal/protocol"
)

// GameSession tracks one running match inside a room: which seats are
// still alive, the score each seat died with, and an active flag that
// guarantees the match concludes at most once. The server does not
// simulate gameplay; clients derive identical piece sequences from the
// broadcast seed, and the session only arbitrates liveness, attack
// relay and the final result.
type GameSession struct {
	room   *Room
	alive  map[int]bool
	scores map[int]uint32
	active bool
}

func newGameSession(room *Room) *GameSession {
	s := &GameSession{
		room:   room,
		alive:  make(map[int]bool),
		scores: make(map[int]uint32),
		active: true,
	}
	for _, seat := range room.occupiedSeats() {
		s.alive[seat] = true
	}
	return s
}

// Start draws the match seed and broadcasts it. The seed is the sole
// source of determinism for the clients' piece generators.
func (s *GameSession) Start() {
	seed := rand.Uint32()

	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, seed)
	s.room.Broadcast(protocol.OpGameStart, body, nil)

	s.room.log.Info("match started", "seed", seed, "players", len(s.alive))
	s.room.pub.MatchStarted(s.room.ID, seed, len(s.alive))
}

// ReportDeath removes a seat from the alive set, records its final
// score and re-evaluates match termination. Reports for seats already
// dead, or after the match concluded, are ignored.
func (s *GameSession) ReportDeath(seat int, score uint32) {
	if !s.active || !s.alive[seat] {
		return
	}
	delete(s.alive, seat)
	s.scores[seat] = score

	s.room.log.Info("player died", "seat", seat, "score", score, "alive", len(s.alive))
	s.evaluate()
}

// evaluate applies the termination rules. Walkover is checked before
// the all-dead rule: a walkover needs the last occupant to still be
// alive, so the two can never match at once, but the occupant-count
// check takes precedence over waiting for further deaths.
func (s *GameSession) evaluate() {
	occupants := s.room.occupiedSeats()

	// Everyone else left the room entirely; the last seated player
	// wins immediately if still playing.
	if len(occupants) == 1 && s.alive[occupants[0]] {
		s.conclude(occupants[0], protocol.ReasonWalkover)
		return
	}

	// All seats dead: highest recorded score wins, ties are a draw.
	if len(s.alive) == 0 {
		s.conclude(s.highestScoreSeat(), protocol.ReasonNormal)
		return
	}

	// Everyone disconnected mid-match; conclude rather than leaving
	// the session stuck.
	if len(occupants) == 0 {
		s.conclude(noSeat, protocol.ReasonNormal)
		return
	}
}

// highestScoreSeat returns the seat with the strictly highest recorded
// score, or noSeat on a tie for the top score.
func (s *GameSession) highestScoreSeat() int {
	if len(s.scores) == 0 {
		return noSeat
	}

	var top uint32
	for _, score := range s.scores {
		if score > top {
			top = score
		}
	}

	winner := noSeat
	for seat, score := range s.scores {
		if score != top {
			continue
		}
		if winner != noSeat {
			return noSeat // tie for the top score
		}
		winner = seat
	}
	return winner
}

// HandleAttack relays a line-clear attack. The target is the next alive
// seat after the attacker, cyclically by index; with fewer than two
// alive seats there is no valid target and the attack is dropped. The
// server only relays; counter-attack accounting happens client-side.
func (s *GameSession) HandleAttack(attacker int, lines byte) {
	if !s.active {
		return
	}

	aliveSeats := make([]int, 0, len(s.alive))
	for seat := range s.alive {
		aliveSeats = append(aliveSeats, seat)
	}
	if len(aliveSeats) < 2 {
		return
	}
	slices.Sort(aliveSeats)

	target := aliveSeats[0]
	for _, seat := range aliveSeats {
		if seat > attacker {
			target = seat
			break
		}
	}
	if target == attacker {
		return
	}

	s.room.Broadcast(protocol.OpGarbageNotice, []byte{byte(attacker), byte(target), lines}, nil)
}

// conclude finishes the match exactly once: broadcasts the result,
// detaches the session from the room and lets the room reset. A second
// call is a no-op, so a death report racing a disconnect report still
// produces a single RESULT_NOTICE.
func (s *GameSession) conclude(winnerSeat int, reason byte) {
	if !s.active {
		return
	}
	s.active = false

	winner := protocol.NoWinner
	if winnerSeat != noSeat {
		winner = byte(winnerSeat)
	}
	s.room.Broadcast(protocol.OpResultNotice, []byte{winner, reason}, nil)

	s.room.log.Info("match finished", "winnerSeat", winnerSeat, "reason", reason)
	s.room.pub.MatchFinished(s.room.ID, winnerSeat, reason)

	s.room.onSessionEnd()
}
