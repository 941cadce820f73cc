package session

import (
	"log/slog"

	"blockbattle/internal/protocol"
)

// handlerFunc processes one message from an identified peer. Handlers
// may mutate peer and room state and send frames to any peer, not only
// the sender.
type handlerFunc func(m *Manager, p *Peer, msg protocol.Message)

// router maps opcodes to handlers. The table is built once at startup
// and never mutated afterwards; dispatch is a plain map lookup.
type router struct {
	routes map[byte]handlerFunc
}

func newRouter() *router {
	return &router{routes: map[byte]handlerFunc{
		protocol.OpLogin: (*Manager).handleLogin,

		protocol.OpSearchRoom: (*Manager).handleSearchRoom,
		protocol.OpCreateRoom: (*Manager).handleCreateRoom,
		protocol.OpJoinRoom:   (*Manager).handleJoinRoom,
		protocol.OpLeaveRoom:  (*Manager).handleLeaveRoom,
		protocol.OpRoomInfo:   (*Manager).handleRoomInfo,

		protocol.OpToggleReady: (*Manager).handleToggleReady,
		protocol.OpMove:        (*Manager).handleMove,
		protocol.OpAttack:      (*Manager).handleAttack,
		protocol.OpGameOver:    (*Manager).handleGameOver,
	}}
}

// dispatch invokes the handler registered for the message's opcode.
// Unknown opcodes are logged and ignored; newer clients must not be
// able to kill a connection by sending something this server does not
// know yet.
func (r *router) dispatch(m *Manager, p *Peer, msg protocol.Message) {
	handler, ok := r.routes[msg.Opcode]
	if !ok {
		slog.Warn("no handler for opcode", "opcode", msg.Opcode, "nickname", p.Nickname)
		return
	}
	handler(m, p, msg)
}
