package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gosuda/plano/internal/lifecycle"
)

// Broadcaster publishes raw payloads. *Bus implements it.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// StatusPublisher fans committed status changes out over Redis so every
// replica's WebSocket hub can relay them.
type StatusPublisher struct {
	bus Broadcaster
}

func NewStatusPublisher(bus Broadcaster) *StatusPublisher {
	return &StatusPublisher{bus: bus}
}

// PublishStatusChanged sends ev to the global, per-kind and per-entity channels.
func (p *StatusPublisher) PublishStatusChanged(ctx context.Context, ev lifecycle.StatusChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.StatusPublisher: marshal: %w", err)
	}

	var errs []error
	for _, ch := range []string{StatusChannel(), KindChannel(ev.Kind), EntityChannel(ev.Kind, ev.EntityID)} {
		if err := p.bus.Publish(ctx, ch, payload); err != nil {
			errs = append(errs, fmt.Errorf("redis.StatusPublisher: %s: %w", ch, err))
		}
	}

	return errors.Join(errs...)
}
