package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mpurbo/ecosim/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is one connected observer. Frames are queued on send; the writer
// goroutine drains it.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// wsHub fans broadcast frames out to all connected observers. A client whose
// send queue is full has the frame dropped rather than stalling the
// simulation.
type wsHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

func newHub() *wsHub {
	return &wsHub{clients: make(map[*wsClient]struct{})}
}

func (h *wsHub) add(c *wsClient) {
	h.mu.Lock()
	if h.closed {
		close(c.send)
	} else {
		h.clients[c] = struct{}{}
	}
	h.mu.Unlock()
}

// remove drops the client and closes its queue, ending the writer loop.
// Idempotent: the lock excludes broadcast and closeAll, and the channel is
// closed only while the client is still registered.
func (h *wsHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *wsHub) broadcast(b []byte) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
		}
	}
	h.mu.RUnlock()
}

func (h *wsHub) closeAll() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, s.cfg.SendBuffer)}
	s.hub.add(client)
	defer func() {
		s.hub.remove(client)
		_ = conn.Close()
	}()

	// Reader: observers don't send anything meaningful; drain until the peer
	// goes away, then release the writer by removing the client.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(client)
				return
			}
		}
	}()

	for b := range client.send {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}
