package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
)

// AppendMessage stores a message at the tail of a room's log and returns the
// stored representation. The ordering key is the appending instance's wall
// clock in milliseconds; clock skew between instances can invert
// cross-instance ordering and is accepted, not corrected.
func AppendMessage(ctx context.Context, roomID string, senderID uint, content string) (models.Message, error) {
	msg := models.Message{
		RoomID:    roomID,
		UserID:    senderID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("marshal message: %w", err)
	}

	// Appending also records room existence, healing rooms whose creation
	// never completed.
	pipe := database.RDB.Pipeline()
	pipe.ZAdd(ctx, roomKey(roomID), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: payload,
	})
	pipe.SAdd(ctx, roomsKey, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.Message{}, fmt.Errorf("append message to room %s: %w", roomID, err)
	}

	return msg, nil
}

// PageMessages returns up to size messages from a room, newest first,
// starting at offset. A room with no recorded state yields an empty page:
// asking for history that does not exist yet is not an error.
func PageMessages(ctx context.Context, roomID string, offset, size int) ([]models.Message, error) {
	exists, err := RoomExists(ctx, roomID)
	if err != nil {
		return nil, err
	}

	messages := []models.Message{}
	if !exists || size == 0 {
		return messages, nil
	}

	values, err := database.RDB.ZRevRange(ctx, roomKey(roomID), int64(offset), int64(offset+size-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("page messages for room %s: %w", roomID, err)
	}

	for _, value := range values {
		var msg models.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			return nil, fmt.Errorf("decode stored message in room %s: %w", roomID, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
