package chat

import (
	"context"
	"log"

	"github.com/relaychat/chat_backend/database"
)

// Bootstrap seeds the broker with the default named room. Safe to run on
// every instance at startup: the name is written only once and the existence
// record is a set add.
func Bootstrap(ctx context.Context) error {
	created, err := database.RDB.SetNX(ctx, roomNameKey(DefaultRoomID), "General", 0).Result()
	if err != nil {
		return err
	}

	if err := database.RDB.SAdd(ctx, roomsKey, DefaultRoomID).Err(); err != nil {
		return err
	}

	if created {
		log.Println("Seeded default room")
	}
	return nil
}
