package system

import (
	"log"

	"github.com/gofiber/contrib/websocket"
)

type WebSocketController struct {
	hub *ProgressHub
}

func NewWebSocketController(hub *ProgressHub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleWebSocket keeps the connection registered with the hub until the
// client goes away. Inbound messages are ignored; the stream is one-way.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	h.hub.register(c)
	defer h.hub.unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Println("read:", err)
			break
		}
	}
}
