package session

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockbattle/internal/events"
	"blockbattle/internal/protocol"
)

func testRoom(t *testing.T, occupants ...string) (*Room, []*Peer, []*fakeConn) {
	t.Helper()
	room := newRoom(1, "test", events.Nop{})

	var peers []*Peer
	var conns []*fakeConn
	for _, nickname := range occupants {
		c := &fakeConn{id: nickname}
		p := newPeer(c, slog.Default())
		p.Nickname = nickname
		p.Authenticated = true
		require.NotEqual(t, noSeat, room.Enter(p))
		peers = append(peers, p)
		conns = append(conns, c)
	}
	return room, peers, conns
}

func TestRoomEnterAssignsLowestFreeSeat(t *testing.T) {
	room, peers, _ := testRoom(t, "a", "b", "c")

	// Vacating a middle seat makes it the next seat handed out.
	require.Equal(t, 1, room.Leave(peers[1]))

	d := newPeer(&fakeConn{id: "d"}, slog.Default())
	assert.Equal(t, 1, room.Enter(d))
}

func TestRoomFull(t *testing.T) {
	room, _, _ := testRoom(t, "a", "b", "c", "d")

	extra := newPeer(&fakeConn{id: "x"}, slog.Default())
	assert.Equal(t, noSeat, room.Enter(extra))
}

func TestReadyStartGating(t *testing.T) {
	room, _, _ := testRoom(t, "host", "guest")

	// Host readiness is irrelevant; the guest gates the start.
	assert.False(t, room.CanStart())

	assert.True(t, room.ToggleReady(1))
	assert.True(t, room.CanStart())

	require.NoError(t, room.StartSession())
	assert.True(t, room.InMatch())
	assert.False(t, room.CanStart())
	assert.False(t, room.Ready(1), "ready flags clear when the match starts")

	// Starting again while running is a contract violation.
	assert.Error(t, room.StartSession())
}

func TestToggleReadyRejectsHostSeat(t *testing.T) {
	room, _, _ := testRoom(t, "host", "guest")
	assert.False(t, room.ToggleReady(0))
	assert.False(t, room.Ready(0))
}

func TestSingleOccupantCannotStart(t *testing.T) {
	room, _, _ := testRoom(t, "host")
	assert.False(t, room.CanStart())
	assert.Error(t, room.StartSession())
}

func TestHostMigrationDeterminism(t *testing.T) {
	// Occupants in seats {0, 2, 3}: seat 1 was vacated beforehand.
	room, peers, conns := testRoom(t, "h", "b", "c", "d")
	room.Leave(peers[1])
	for _, c := range conns {
		c.reset()
	}

	// Host leaves while the room is open; migration runs immediately
	// and already announces everything.
	require.Equal(t, noSeat, room.Leave(peers[0]))

	// The occupant of seat 2 (lowest remaining) became host.
	assert.Same(t, peers[2], room.PeerAt(0))
	assert.Nil(t, room.PeerAt(2))
	assert.Same(t, peers[3], room.PeerAt(3))

	// Remaining peers observed: the host's departure, then exactly one
	// leave for seat 2 followed by one enter for seat 0.
	observer := conns[3]
	var got []protocol.Message
	for _, msg := range observer.sent {
		if msg.Opcode == protocol.OpLeaveNotice || msg.Opcode == protocol.OpEnterNotice {
			got = append(got, msg)
		}
	}
	require.Len(t, got, 3)
	assert.Equal(t, protocol.OpLeaveNotice, got[0].Opcode)
	assert.Equal(t, []byte{0}, got[0].Body)
	assert.Equal(t, protocol.OpLeaveNotice, got[1].Opcode)
	assert.Equal(t, []byte{2}, got[1].Body)
	assert.Equal(t, protocol.OpEnterNotice, got[2].Opcode)
	assert.Equal(t, append([]byte{0}, []byte("c")...), got[2].Body)
}

func TestRoomHostlessUntilNextEntrant(t *testing.T) {
	room, peers, _ := testRoom(t, "h")
	require.Equal(t, noSeat, room.Leave(peers[0]))
	assert.True(t, room.IsEmpty())

	next := newPeer(&fakeConn{id: "n"}, slog.Default())
	assert.Equal(t, 0, room.Enter(next))
}

func TestReadyFlagsResetAfterMatch(t *testing.T) {
	room, _, conns := testRoom(t, "host", "g1", "g2")
	room.ToggleReady(1)
	room.ToggleReady(2)
	require.NoError(t, room.StartSession())

	session := room.Session()
	session.ReportDeath(1, 10)
	session.ReportDeath(2, 20)
	session.ReportDeath(0, 30)

	assert.False(t, room.InMatch())
	assert.Nil(t, room.Session())
	for seat := 1; seat < MaxSeats; seat++ {
		assert.False(t, room.Ready(seat), "seat %d", seat)
	}

	// Every occupant got exactly one result.
	for _, c := range conns {
		assert.Len(t, c.byOpcode(protocol.OpResultNotice), 1)
	}
}

func TestHostMigrationDeferredDuringMatch(t *testing.T) {
	room, peers, conns := testRoom(t, "host", "g1", "g2")
	room.ToggleReady(1)
	room.ToggleReady(2)
	require.NoError(t, room.StartSession())

	// Host leaves mid-match: forced death, no migration yet.
	require.Equal(t, 0, room.Leave(peers[0]))
	assert.Nil(t, room.PeerAt(0))
	assert.Same(t, peers[1], room.PeerAt(1))
	assert.True(t, room.InMatch())

	conns[2].reset()

	// Match ends; the deferred migration runs now.
	session := room.Session()
	session.ReportDeath(1, 40)
	session.ReportDeath(2, 90)

	assert.Same(t, peers[1], room.PeerAt(0))
	assert.Nil(t, room.PeerAt(1))

	msgs := conns[2].sent
	require.NotEmpty(t, msgs)
	assert.Equal(t, protocol.OpResultNotice, msgs[0].Opcode)
	assert.Equal(t, []byte{2, protocol.ReasonNormal}, msgs[0].Body)
}
