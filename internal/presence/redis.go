package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	pkglog "morning/internal/log"
)

// RedisChannel carries presence packets over one Redis pub/sub channel so
// every server instance sees every announcement.
type RedisChannel struct {
	client  *redis.Client
	channel string
}

func NewRedisChannel(client *redis.Client, channel string) *RedisChannel {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisChannel{client: client, channel: channel}
}

func (r *RedisChannel) Publish(ctx context.Context, p Packet) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal packet: %w", err)
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

func (r *RedisChannel) Subscribe(ctx context.Context) (<-chan Packet, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	// Wait for subscription to be active
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	out := make(chan Packet, subscriberBuffer)
	go r.processMessages(ctx, pubsub, out)
	return out, nil
}

func (r *RedisChannel) processMessages(ctx context.Context, pubsub *redis.PubSub, out chan<- Packet) {
	defer close(out)
	defer pubsub.Close()

	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "presence").Logger()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			p, ok := Decode([]byte(msg.Payload))
			if !ok {
				logger.Debug().Str("payload", pkglog.Truncate(msg.Payload, 200)).Msg("dropping malformed presence packet")
				continue
			}

			select {
			case out <- p:
			case <-ctx.Done():
				return
			default:
				// Subscriber full, skip packet
			}
		}
	}
}

// Close is a no-op; the Redis client is owned by the caller.
func (r *RedisChannel) Close() error {
	return nil
}
