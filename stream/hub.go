package stream

import (
	"encoding/json"
	"log"
)

// Frame is the payload pushed to every live client: the broadcast envelope
// stripped of its origin tag. Frames are not filtered by room; clients filter
// on their side.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Subscriber is one live client connection attached to this instance.
type Subscriber struct {
	send   chan []byte
	userID uint
}

// UserID returns the authenticated user behind this connection.
func (s *Subscriber) UserID() uint {
	return s.userID
}

// Hub maintains the set of live connections on this instance and fans each
// frame out to all of them
type Hub struct {
	// Registered subscribers
	subscribers map[*Subscriber]bool

	// Outbound frames, already encoded
	broadcast chan []byte

	// Register requests from new connections
	register chan *Subscriber

	// Unregister requests from closing connections
	unregister chan *Subscriber
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:   make(chan []byte),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		subscribers: make(map[*Subscriber]bool),
	}
}

// Run starts the hub loop. It owns the subscriber set; all mutation happens
// here.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.subscribers[sub] = true
		case sub := <-h.unregister:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
		case payload := <-h.broadcast:
			for sub := range h.subscribers {
				select {
				case sub.send <- payload:
				default:
					// Slow consumer: drop the connection rather than
					// stall delivery to everyone else.
					close(sub.send)
					delete(h.subscribers, sub)
				}
			}
		}
	}
}

// Subscribe registers a new connection for a user and returns its delivery
// handle.
func (h *Hub) Subscribe(userID uint) *Subscriber {
	sub := &Subscriber{
		send:   make(chan []byte, 256),
		userID: userID,
	}
	h.register <- sub
	return sub
}

// Unsubscribe removes a connection from local fan-out. Safe to call for a
// connection the hub already dropped.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.unregister <- sub
}

// Broadcast delivers a frame to every live connection on this instance.
func (h *Hub) Broadcast(frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("error marshaling frame: %v", err)
		return
	}
	h.broadcast <- payload
}
