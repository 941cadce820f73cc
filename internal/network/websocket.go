package network

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests to WebSocket connections carrying
// the same binary protocol: each binary message holds raw stream bytes
// that feed the shared packetizer, and outbound frames are written as
// binary messages. Relay or browser clients speak the identical wire
// format as TCP ones.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		ws.SetReadLimit(readBufferSize)
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			ws.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		s.attach(&wsTransport{ws: ws})
	}
}

// wsTransport adapts a gorilla WebSocket connection to the transport
// interface.
type wsTransport struct {
	ws *websocket.Conn
}

func (t *wsTransport) ReadChunk() ([]byte, error) {
	_, data, err := t.ws.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteFrame(frame []byte) error {
	t.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return t.ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (t *wsTransport) Ping() error {
	t.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return t.ws.WriteMessage(websocket.PingMessage, nil)
}

func (t *wsTransport) Close() error { return t.ws.Close() }

func (t *wsTransport) RemoteAddr() net.Addr { return t.ws.RemoteAddr() }
