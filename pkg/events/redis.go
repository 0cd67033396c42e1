package events

import (
	"context"
	"encoding/json"

	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/redis"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBridge delivers events locally and relays them to the other API
// instances through a Redis channel.
type RedisBridge struct {
	local   *Bus
	pub     redisPublisher
	channel string
	origin  string
	logg    *logger.Logger
}

func NewRedisBridge(local *Bus, pub redisPublisher, channel, origin string, logg *logger.Logger) *RedisBridge {
	return &RedisBridge{local: local, pub: pub, channel: channel, origin: origin, logg: logg}
}

func (b *RedisBridge) Publish(ctx context.Context, evt Event) {
	b.local.Publish(ctx, evt)
	payload, err := json.Marshal(envelope{Origin: b.origin, Event: evt})
	if err != nil {
		return
	}
	if err := b.pub.Publish(ctx, b.channel, payload); err != nil && b.logg != nil {
		b.logg.Error(b.logg.WithField(ctx, "event", string(evt.Name)), "events.relay_publish_failed", err)
	}
}

// Run relays events published by other instances until ctx is done.
func (b *RedisBridge) Run(ctx context.Context, client *redis.Client) error {
	sub, err := client.Subscribe(ctx, b.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.relay(ctx, []byte(msg.Payload))
		}
	}
}

func (b *RedisBridge) relay(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		if b.logg != nil {
			b.logg.Warn(ctx, "events.relay_decode_failed")
		}
		return
	}
	if env.Origin == b.origin || env.Event.Name == "" {
		return
	}
	b.local.Publish(ctx, env.Event)
}
