package chat

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Broker-backed tests run against a local Redis and are skipped when it is
// not available. The user store is an in-memory sqlite database.
const testRedisAddr = "localhost:6379"

// testRedisDB keeps test keys away from any local development data.
const testRedisDB = 15

func setupTest(t *testing.T) context.Context {
	t.Helper()

	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
		DB:   testRedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}
	database.RDB = client

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

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return ctx
}

func createTestUser(t *testing.T, username string) uint {
	t.Helper()

	user := models.User{Username: username, Password: "pw"}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user.ID
}
