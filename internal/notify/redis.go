package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix namespaces event channels in Redis.
const DefaultChannelPrefix = "punch:events:"

// RedisPublisher publishes events on Redis pub/sub so every instance, and
// the CLI, reach the same dashboards.
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPublisher creates a publisher on client. An empty prefix uses
// DefaultChannelPrefix.
func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Publish encodes payload as JSON and publishes it on prefix+topic.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	if err := p.client.Publish(ctx, p.prefix+topic, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Bridge relays every event published under prefix into hub until ctx is
// done.
func Bridge(ctx context.Context, client redis.UniversalClient, prefix string, hub *Hub, logger *slog.Logger) error {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	ps := client.PSubscribe(ctx, prefix+"*")
	defer ps.Close()

	// Wait for the subscription to be confirmed before relaying
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	logger.Info("relaying redis events", "pattern", prefix+"*")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(msg.Channel, prefix)
			hub.Deliver(topic, []byte(msg.Payload))
		}
	}
}
