package chat

import (
	"context"
	"log"
	"strconv"

	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
)

// MarkOnline adds a user to the shared online set.
func MarkOnline(ctx context.Context, userID uint) error {
	return database.RDB.SAdd(ctx, onlineUsersKey, formatUserID(userID)).Err()
}

// MarkOffline removes a user from the shared online set.
func MarkOffline(ctx context.Context, userID uint) error {
	return database.RDB.SRem(ctx, onlineUsersKey, formatUserID(userID)).Err()
}

// IsOnline reports whether a user is currently in the online set. Presence is
// eventually consistent with connection lifecycle: a connection that died
// without a clean disconnect may show online until its server notices.
func IsOnline(ctx context.Context, userID uint) (bool, error) {
	return database.RDB.SIsMember(ctx, onlineUsersKey, formatUserID(userID)).Result()
}

// ListOnline returns the currently online users keyed by id, with usernames
// resolved against the user store. Ids whose user record cannot be resolved
// are skipped.
func ListOnline(ctx context.Context) (map[string]models.PublicUser, error) {
	ids, err := database.RDB.SMembers(ctx, onlineUsersKey).Result()
	if err != nil {
		return nil, err
	}

	users := map[string]models.PublicUser{}
	for _, id := range ids {
		uid, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			log.Printf("online set contains malformed user id %q", id)
			continue
		}

		var user models.User
		if err := database.DB.First(&user, uint(uid)).Error; err != nil {
			log.Printf("online user %s has no user record: %v", id, err)
			continue
		}
		users[id] = models.PublicUser{ID: user.ID, Username: user.Username, Online: true}
	}

	return users, nil
}
