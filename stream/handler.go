package stream

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/relaychat/chat_backend/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// WSHandler returns the WebSocket variant of the live stream: the same frames
// the SSE endpoint pushes, as text messages.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("error upgrading connection: %v", err)
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			sub:    hub.Subscribe(userID),
			userID: userID,
		}

		if err := chat.MarkOnline(c.Request.Context(), userID); err != nil {
			log.Printf("error marking user %d online: %v", userID, err)
		}

		go client.readPump()
		go client.writePump()
	}
}
