// Package events publishes room and match lifecycle events for
// external consumers (dashboards, recorders). Publishing is
// best-effort and never blocks the hub goroutine.
package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectRoomCreated   = "blockbattle.room.created"
	SubjectRoomClosed    = "blockbattle.room.closed"
	SubjectMatchStarted  = "blockbattle.match.started"
	SubjectMatchFinished = "blockbattle.match.finished"
)

// Publisher receives lifecycle notifications from the session layer.
type Publisher interface {
	RoomCreated(roomID uint16, title string)
	RoomClosed(roomID uint16)
	MatchStarted(roomID uint16, seed uint32, players int)
	MatchFinished(roomID uint16, winnerSeat int, reason byte)
	Close()
}

// Nop discards every event. Used when no NATS URL is configured.
type Nop struct{}

func (Nop) RoomCreated(uint16, string)       {}
func (Nop) RoomClosed(uint16)                {}
func (Nop) MatchStarted(uint16, uint32, int) {}
func (Nop) MatchFinished(uint16, int, byte)  {}
func (Nop) Close()                           {}

type roomEvent struct {
	RoomID    uint16    `json:"roomId"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type matchEvent struct {
	RoomID     uint16    `json:"roomId"`
	Seed       uint32    `json:"seed,omitempty"`
	Players    int       `json:"players,omitempty"`
	WinnerSeat *int      `json:"winnerSeat,omitempty"`
	Reason     byte      `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// NATSPublisher forwards events to a NATS server as JSON messages.
type NATSPublisher struct {
	nc  *nats.Conn
	log *slog.Logger
}

func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("blockbattle-server"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, log: slog.With("component", "events")}, nil
}

func (p *NATSPublisher) RoomCreated(roomID uint16, title string) {
	p.publish(SubjectRoomCreated, roomEvent{RoomID: roomID, Title: title, Timestamp: time.Now().UTC()})
}

func (p *NATSPublisher) RoomClosed(roomID uint16) {
	p.publish(SubjectRoomClosed, roomEvent{RoomID: roomID, Timestamp: time.Now().UTC()})
}

func (p *NATSPublisher) MatchStarted(roomID uint16, seed uint32, players int) {
	p.publish(SubjectMatchStarted, matchEvent{RoomID: roomID, Seed: seed, Players: players, Timestamp: time.Now().UTC()})
}

func (p *NATSPublisher) MatchFinished(roomID uint16, winnerSeat int, reason byte) {
	ev := matchEvent{RoomID: roomID, Reason: reason, Timestamp: time.Now().UTC()}
	if winnerSeat >= 0 {
		ev.WinnerSeat = &winnerSeat
	}
	p.publish(SubjectMatchFinished, ev)
}

func (p *NATSPublisher) Close() {
	p.nc.Drain()
}

func (p *NATSPublisher) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("marshal event", "subject", subject, "error", err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("publish event", "subject", subject, "error", err)
	}
}
