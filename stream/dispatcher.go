package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/relaychat/chat_backend/models"
)

// Channel is the shared broadcast channel every server instance publishes to
// and subscribes from.
const Channel = "MESSAGES"

// envelope is the internal publish payload: a frame plus the originating
// instance id. The id exists only so each instance can recognize and discard
// its own publications; it never reaches clients.
type envelope struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	ServerID string          `json:"serverId"`
}

// Dispatcher owns this instance's publish capability and its single
// subscription loop on the shared channel. The instance id is injected at
// construction and lives for the process lifetime; a collision with another
// instance only costs that instance its echo suppression.
type Dispatcher struct {
	rdb      *redis.Client
	hub      *Hub
	serverID string
}

// NewDispatcher creates a dispatcher bound to one broker connection, one
// local hub and one instance id.
func NewDispatcher(rdb *redis.Client, hub *Hub, serverID string) *Dispatcher {
	return &Dispatcher{
		rdb:      rdb,
		hub:      hub,
		serverID: serverID,
	}
}

// PublishMessage is called once per successful append. Local clients are
// notified synchronously; everyone else learns about the message through the
// shared channel, tagged with this instance's id so our own subscription loop
// drops it instead of delivering it twice.
func (d *Dispatcher) PublishMessage(ctx context.Context, msg models.Message) error {
	d.hub.Broadcast(Frame{Type: "message", Data: msg})

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	payload, err := json.Marshal(envelope{
		Type:     "message",
		Data:     data,
		ServerID: d.serverID,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return d.rdb.Publish(ctx, Channel, payload).Err()
}

// Listen runs the per-instance subscription loop until the context is
// canceled. There is exactly one of these per process, shared by every live
// connection; it never writes to clients itself, it only hands frames to the
// hub.
func (d *Dispatcher) Listen(ctx context.Context) {
	pubsub := d.rdb.Subscribe(ctx, Channel)
	defer pubsub.Close()

	log.Printf("Subscribed to broadcast channel %s; server_id=%s", Channel, d.serverID)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d.dispatch([]byte(msg.Payload))
		}
	}
}

// dispatch forwards one received envelope to local clients, unless this
// instance published it.
func (d *Dispatcher) dispatch(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("error unmarshaling envelope: %v", err)
		return
	}

	if env.ServerID == d.serverID {
		return
	}

	d.hub.Broadcast(Frame{Type: env.Type, Data: env.Data})
}
