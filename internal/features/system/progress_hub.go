package system

import (
	"encoding/json"
	"sync"

	sync_feature "go-callsync/internal/features/sync"

	"github.com/gofiber/contrib/websocket"
)

// ProgressHub fans pipeline snapshots out to connected websocket clients.
// It implements the sync progress sink; a slow or dead client is dropped
// rather than allowed to block the pipeline.
type ProgressHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		conns: make(map[*websocket.Conn]bool),
	}
}

// Publish implements sync_feature.ProgressSink.
func (h *ProgressHub) Publish(snapshot sync_feature.Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *ProgressHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *ProgressHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
