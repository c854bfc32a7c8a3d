package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/utils"
)

const testRedisAddr = "localhost:6379"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	database.RDB = client
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.MustGet("userID").(uint),
			"username": c.MustGet("username").(string),
		})
	})
	return router
}

func request(router *gin.Engine, target string, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	router := setupRouter(t)

	if w := request(router, "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthRejectsInvalidToken(t *testing.T) {
	router := setupRouter(t)

	if w := request(router, "/protected", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	router := setupRouter(t)

	token, err := utils.GenerateToken(7, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if w := request(router, "/protected", "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
}

func TestJWTAuthAcceptsQueryToken(t *testing.T) {
	router := setupRouter(t)

	token, err := utils.GenerateToken(7, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// EventSource connections cannot set headers
	if w := request(router, "/protected?token="+token, ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
}

func TestJWTAuthRejectsRevokedToken(t *testing.T) {
	router := setupRouter(t)

	token, err := utils.GenerateToken(7, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if err := chat.RevokeToken(context.Background(), claims.ID, time.Minute); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}

	if w := request(router, "/protected", "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 after logout", w.Code)
	}
}
