// Package chat implements the room, message and presence model on top of the
// shared Redis broker. All state that must be visible to every server
// instance lives behind these keys; nothing in this package is process-local.
package chat

import "strconv"

const (
	// DefaultRoomID is the pre-provisioned room every user joins at
	// registration time.
	DefaultRoomID = "0"

	roomsKey       = "rooms"
	onlineUsersKey = "online_users"
)

func roomKey(roomID string) string {
	return "room:" + roomID
}

func roomNameKey(roomID string) string {
	return "room:" + roomID + ":name"
}

func userRoomsKey(userID uint) string {
	return "user:" + formatUserID(userID) + ":rooms"
}

func denylistKey(jti string) string {
	return "denylist:" + jti
}

func formatUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
