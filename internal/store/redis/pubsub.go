// Package redis carries status changes between replicas. Every committed
// transition is published on three channels (all changes, one kind, one
// entity); WebSocket hubs and entity caches subscribe to whichever scope
// they serve.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
)

const (
	channelPrefix = "plano:status"

	// DefaultBuffer is the per-subscription message buffer.
	DefaultBuffer = 64
)

var errNoChannel = errors.New("channel name is empty")

// Bus is the Redis-backed status event bus.
type Bus struct {
	client *redis.Client
	buffer int
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBuffer sets how many undelivered messages each subscription holds
// before Redis starts dropping them.
func WithBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, addr, password string, db int, opts ...BusOption) (*Bus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.Open: ping %s: %w", addr, err)
	}

	b := &Bus{client: client, buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bus) Close() error {
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("redis.Bus.Close: %w", err)
	}
	return nil
}

func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) error {
	if channel == "" {
		return fmt.Errorf("redis.Bus.Publish: %w", errNoChannel)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Bus.Publish: %s: %w", channel, err)
	}
	return nil
}

// Subscribe streams payloads published on channel until ctx is done or the
// returned stop function is called. The stream is closed on exit.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	if channel == "" {
		return nil, nil, fmt.Errorf("redis.Bus.Subscribe: %w", errNoChannel)
	}

	sub := b.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.Bus.Subscribe: %s: %w", channel, err)
	}

	in := sub.Channel(redis.WithChannelSize(b.buffer))
	out := make(chan []byte, b.buffer)

	go func() {
		defer close(out)
		defer log.Debug().Str("channel", channel).Msg("status subscription ended")

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	stop := func() {
		_ = sub.Close()
	}

	return out, stop, nil
}

// StatusChannel carries every status change.
func StatusChannel() string {
	return channelPrefix
}

// KindChannel carries status changes of one kind.
func KindChannel(kind domain.Kind) string {
	return channelPrefix + ":" + string(kind)
}

// EntityChannel carries one entity's status changes.
func EntityChannel(kind domain.Kind, id uuid.UUID) string {
	return KindChannel(kind) + ":" + id.String()
}
