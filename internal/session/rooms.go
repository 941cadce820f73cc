package session

import (
	"log/slog"
	"slices"

	"blockbattle/internal/events"
)

// RoomDirectory creates, looks up, lists and destroys rooms. Ids are
// assigned monotonically starting at 1 and never reused for the life of
// the process. Mutated only from the hub goroutine.
type RoomDirectory struct {
	rooms  map[uint16]*Room
	nextID uint16
	pub    events.Publisher
}

func NewRoomDirectory(pub events.Publisher) *RoomDirectory {
	return &RoomDirectory{
		rooms:  make(map[uint16]*Room),
		nextID: 1,
		pub:    pub,
	}
}

func (d *RoomDirectory) Create(title string) *Room {
	id := d.nextID
	d.nextID++

	room := newRoom(id, title, d.pub)
	d.rooms[id] = room

	slog.Info("room created", "room", id, "title", title)
	d.pub.RoomCreated(id, title)
	return room
}

func (d *RoomDirectory) Get(id uint16) (*Room, bool) {
	room, ok := d.rooms[id]
	return room, ok
}

func (d *RoomDirectory) Remove(id uint16) {
	if _, ok := d.rooms[id]; !ok {
		return
	}
	delete(d.rooms, id)

	slog.Info("room removed", "room", id)
	d.pub.RoomClosed(id)
}

// All returns every room ordered by id, for stable listings.
func (d *RoomDirectory) All() []*Room {
	rooms := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	slices.SortFunc(rooms, func(a, b *Room) int { return int(a.ID) - int(b.ID) })
	return rooms
}
