package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
	"github.com/relaychat/chat_backend/stream"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testRedisAddr = "localhost:6379"

func setupStores(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}
	database.RDB = client
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	hub := stream.NewHub()
	go hub.Run()
	Streamer = stream.NewDispatcher(client, hub, "test-instance")
}

// fakeAuth stands in for the JWT middleware in handler tests.
func fakeAuth(userID uint, username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("username", username)
		c.Next()
	}
}

func postJSON(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getURL(router *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginRegistersThenAuthenticates(t *testing.T) {
	setupStores(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/login", Login)

	// Unknown username: registration and login are the same operation
	w := postJSON(router, "/api/login", `{"username":"alice","password":"pw1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("first login status = %d, want 200; body = %s", w.Code, w.Body.String())
	}

	var first struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if first.User.ID != 1 || first.User.Username != "alice" {
		t.Errorf("user = %+v, want id=1 username=alice", first.User)
	}
	if first.Token == "" {
		t.Error("no token issued")
	}

	// Registration put the user in the default room
	member, err := chat.IsMember(context.Background(), first.User.ID, chat.DefaultRoomID)
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if !member {
		t.Error("new user is not a member of the default room")
	}

	// Same credentials: same account
	w = postJSON(router, "/api/login", `{"username":"alice","password":"pw1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second login status = %d, want 200", w.Code)
	}
	var second struct {
		User models.PublicUser `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &second)
	if second.User.ID != first.User.ID {
		t.Errorf("second login id = %d, want %d", second.User.ID, first.User.ID)
	}

	// Wrong password: generic rejection
	w = postJSON(router, "/api/login", `{"username":"alice","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid username or password") {
		t.Errorf("bad password body = %s, want the generic message", w.Body.String())
	}
}

func TestGetMessagesRejectsInvalidPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/rooms/:id/messages", fakeAuth(1, "alice"), GetMessages)

	for _, target := range []string{
		"/api/rooms/0/messages?offset=-1",
		"/api/rooms/0/messages?size=-5",
		"/api/rooms/0/messages?offset=abc",
		"/api/rooms/0/messages?size=1.5",
	} {
		if w := getURL(router, target); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, w.Code)
		}
	}
}

func TestCreateMessageRequiresMembership(t *testing.T) {
	setupStores(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/messages", fakeAuth(1, "alice"), CreateMessage)
	router.GET("/api/rooms/:id/messages", fakeAuth(1, "alice"), GetMessages)

	body := `{"room_id":"0","content":"hello"}`

	w := postJSON(router, "/api/messages", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-member post status = %d, want 403", w.Code)
	}

	if err := chat.AddMember(context.Background(), 1, chat.DefaultRoomID); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	w = postJSON(router, "/api/messages", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("member post status = %d, want 201; body = %s", w.Code, w.Body.String())
	}

	// The append is immediately visible in history
	w = getURL(router, "/api/rooms/0/messages?offset=0&size=1")
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", w.Code)
	}
	var page []models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(page) != 1 || page[0].Content != "hello" || page[0].UserID != 1 {
		t.Errorf("history = %+v, want the posted message", page)
	}
}
