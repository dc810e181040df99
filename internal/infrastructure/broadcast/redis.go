package broadcast

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stockpulse/invsync/internal/domain/notification"
)

// RedisPublisher is the subset of the redis client used for PUBLISH
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisBroadcaster publishes envelopes on redis pub/sub, one redis channel per logical channel
type RedisBroadcaster struct {
	client RedisPublisher
	prefix string
}

// NewRedisBroadcaster creates a RedisBroadcaster; prefix defaults to "invsync:"
func NewRedisBroadcaster(client RedisPublisher, prefix string) *RedisBroadcaster {
	if prefix == "" {
		prefix = "invsync:"
	}
	return &RedisBroadcaster{client: client, prefix: prefix}
}

// Publish sends the encoded envelope with PUBLISH
func (b *RedisBroadcaster) Publish(ctx context.Context, channel, event string, payload map[string]any) error {
	body, err := encode(channel, event, payload)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.prefix+channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s on %s: %w", event, channel, err)
	}
	return nil
}

var _ notification.Broadcaster = (*RedisBroadcaster)(nil)
