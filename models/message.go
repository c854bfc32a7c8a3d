package models

// Message is a single chat message as stored in the per-room log and pushed
// over the broadcast channel. Room ids are strings: named rooms use numeric
// ids ("0"), private rooms use the canonical "min:max" pair id.
type Message struct {
	RoomID    string `json:"room_id"`
	UserID    uint   `json:"user_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}
