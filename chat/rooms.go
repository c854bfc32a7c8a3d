package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
)

// ErrInvalidRoomID is returned for room ids that cannot be derived or parsed.
var ErrInvalidRoomID = errors.New("invalid room id")

// CanonicalPrivateRoomID derives the id of the private room between two
// users: "{min}:{max}". The same pair always yields the same id regardless of
// argument order. Returns false when either id is invalid or the ids are
// equal; no such room can exist.
func CanonicalPrivateRoomID(user1, user2 uint) (string, bool) {
	if user1 == 0 || user2 == 0 || user1 == user2 {
		return "", false
	}
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	return fmt.Sprintf("%d:%d", user1, user2), true
}

// CreatePrivateRoom records the room between two users and adds it to both
// users' membership sets. Idempotent: repeated calls for the same pair touch
// the same id and the set writes are no-ops. Member names are resolved from
// the user store at call time.
func CreatePrivateRoom(ctx context.Context, user1, user2 uint) (models.Room, error) {
	roomID, ok := CanonicalPrivateRoomID(user1, user2)
	if !ok {
		return models.Room{}, ErrInvalidRoomID
	}

	// Existence is recorded first so a crash between the membership writes
	// leaves at worst an edge that listing repairs on the next create.
	pipe := database.RDB.Pipeline()
	pipe.SAdd(ctx, roomsKey, roomID)
	pipe.SAdd(ctx, userRoomsKey(user1), roomID)
	pipe.SAdd(ctx, userRoomsKey(user2), roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.Room{}, fmt.Errorf("create private room %s: %w", roomID, err)
	}

	names, err := resolveUsernames(user1, user2)
	if err != nil {
		return models.Room{}, err
	}

	return models.Room{ID: roomID, Names: names}, nil
}

// AddMember adds a room to a user's membership set.
func AddMember(ctx context.Context, userID uint, roomID string) error {
	return database.RDB.SAdd(ctx, userRoomsKey(userID), roomID).Err()
}

// IsMember reports whether a user belongs to a room.
func IsMember(ctx context.Context, userID uint, roomID string) (bool, error) {
	return database.RDB.SIsMember(ctx, userRoomsKey(userID), roomID).Result()
}

// RoomExists reports whether a room has durable state recorded in the broker.
func RoomExists(ctx context.Context, roomID string) (bool, error) {
	return database.RDB.SIsMember(ctx, roomsKey, roomID).Result()
}

// ListRoomsForUser returns every room in the user's membership set. Named
// rooms resolve their stored display name; private rooms resolve both member
// usernames. A membership entry pointing at a nameless room with no recorded
// state is skipped: it is the leftover of a partially completed private-room
// creation, and a retried create repairs it. A nameless room id that does not
// split into exactly two user ids is malformed state and aborts the listing.
func ListRoomsForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	roomIDs, err := database.RDB.SMembers(ctx, userRoomsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list rooms for user %d: %w", userID, err)
	}

	rooms := []models.Room{}
	for _, roomID := range roomIDs {
		name, err := database.RDB.Get(ctx, roomNameKey(roomID)).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("room %s name lookup: %w", roomID, err)
		}

		if err == nil && name != "" {
			rooms = append(rooms, models.Room{ID: roomID, Names: []string{name}})
			continue
		}

		exists, err := RoomExists(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}

		memberIDs, err := SplitPrivateRoomID(roomID)
		if err != nil {
			return nil, err
		}

		names, err := resolveUsernames(memberIDs[0], memberIDs[1])
		if err != nil {
			return nil, err
		}

		rooms = append(rooms, models.Room{ID: roomID, Names: names})
	}

	return rooms, nil
}

// SplitPrivateRoomID parses a canonical private-room id back into its two
// member ids.
func SplitPrivateRoomID(roomID string) ([2]uint, error) {
	parts := strings.Split(roomID, ":")
	if len(parts) != 2 {
		return [2]uint{}, ErrInvalidRoomID
	}

	var ids [2]uint
	for i, part := range parts {
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return [2]uint{}, ErrInvalidRoomID
		}
		ids[i] = uint(id)
	}
	return ids, nil
}

func resolveUsernames(userIDs ...uint) ([]string, error) {
	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		var user models.User
		if err := database.DB.Select("username").First(&user, id).Error; err != nil {
			return nil, fmt.Errorf("resolve username for user %d: %w", id, err)
		}
		names = append(names, user.Username)
	}
	return names, nil
}
