package chat

import (
	"context"
	"time"

	"github.com/relaychat/chat_backend/database"
)

// RevokeToken denylists a session token id until the token would have expired
// anyway. Revoking an already-revoked token is a no-op, which makes logout
// idempotent.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return database.RDB.Set(ctx, denylistKey(jti), 1, ttl).Err()
}

// IsTokenRevoked reports whether a session token id has been denylisted.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := database.RDB.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
