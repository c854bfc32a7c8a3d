package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/database"
)

func TestSSEHandlerWritesEventFrames(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	database.RDB = client
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	hub := startHub()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Next()
	}, SSEHandler(hub))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	// Let the connection register before broadcasting
	time.Sleep(50 * time.Millisecond)
	hub.Broadcast(Frame{Type: "message", Data: map[string]string{"content": "hi"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after the connection closed")
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, `data: {"type":"message","data":{"content":"hi"}}`+"\n\n") {
		t.Errorf("body does not contain the expected event frame: %q", body)
	}
}
