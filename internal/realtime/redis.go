// internal/realtime/redis.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Owner uuid.UUID       `json:"owner"`
	Event json.RawMessage `json:"event"`
}

// RedisBroadcaster publishes through a Redis channel so that every server
// instance delivers to its own local hub.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBroadcaster(client *redis.Client, channel string, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel, hub: hub}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, owner uuid.UUID, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(envelope{Owner: owner, Event: data})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("realtime publish: %w", err)
	}
	return nil
}

// Run relays channel messages to the local hub until ctx is done. The
// ready channel, when given, is closed once the subscription is active.
func (b *RedisBroadcaster) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("realtime subscribe: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logrus.WithError(err).Warn("Dropping malformed realtime message")
				continue
			}
			b.hub.Dispatch(env.Owner, env.Event)
		}
	}
}
