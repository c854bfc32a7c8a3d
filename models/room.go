package models

// Room is a chat room as returned to clients. Named rooms carry a single
// stored display name; private rooms carry both members' usernames, resolved
// at query time.
type Room struct {
	ID    string   `json:"id"`
	Names []string `json:"names"`
}
