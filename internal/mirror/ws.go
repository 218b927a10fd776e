package mirror

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// wsUpgrader upgrades HTTP connections to WebSocket.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	// Viewers are read-only; the server typically binds to localhost.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHandler subscribes the connection to the hub and streams frames.
//
// Server sends binary messages framed as described in the package doc.
// Anything the client sends is read and discarded.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("upgrade failed: %v", err), http.StatusBadRequest)
		return
	}
	c := s.Hub.Subscribe()
	log := s.logger().With("remote", r.RemoteAddr)
	log.Info("mirror client connected")

	// Reader: drains control frames and notices disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.Hub.Unsubscribe(c)
				return
			}
		}
	}()

	// Writer: hub -> WS
	defer func() {
		_ = conn.Close()
		log.Info("mirror client disconnected")
	}()
	for msg := range c.Messages() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			log.Debug("mirror write failed", "err", err)
			s.Hub.Unsubscribe(c)
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "dropped"))
}
