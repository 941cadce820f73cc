package session

import (
	"unicode/utf8"

	"blockbattle/internal/protocol"
)

// handleLogin authenticates the connection with a nickname. The
// nickname is stable for the rest of the connection's life.
func (m *Manager) handleLogin(p *Peer, msg protocol.Message) {
	if len(msg.Body) == 0 || !utf8.Valid(msg.Body) {
		p.log.Warn("invalid nickname encoding, login dropped")
		return
	}
	if p.Authenticated {
		// Already logged in; re-acknowledge rather than renaming.
		p.send(protocol.OpLoginResult, []byte{0})
		return
	}

	p.Nickname = string(msg.Body)
	p.Authenticated = true
	p.log.Info("logged in", "nickname", p.Nickname)

	p.send(protocol.OpLoginResult, []byte{0})
}
