package stream

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/relaychat/chat_backend/chat"
)

// SSEHandler returns the live stream endpoint: a long-lived response carrying
// one "data: <json>\n\n" frame per broadcast message, flushed as soon as it
// is available. The connection stays open until the client goes away or the
// hub drops it for not keeping up.
func SSEHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		sub := hub.Subscribe(userID)
		if err := chat.MarkOnline(c.Request.Context(), userID); err != nil {
			log.Printf("error marking user %d online: %v", userID, err)
		}
		defer func() {
			hub.Unsubscribe(sub)
			// The request context is gone by now; presence cleanup gets its own.
			if err := chat.MarkOffline(context.Background(), userID); err != nil {
				log.Printf("error marking user %d offline: %v", userID, err)
			}
		}()

		// Commit the headers before the first message arrives
		c.Writer.Flush()

		done := c.Request.Context().Done()
		for {
			select {
			case <-done:
				return
			case payload, ok := <-sub.send:
				if !ok {
					return
				}
				fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
				c.Writer.Flush()
			}
		}
	}
}
