package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

// EventStatusChanged is the event type published after every committed transition.
const EventStatusChanged = "status_changed"

// StatusChanged is the notification payload. Only Timestamp is guaranteed
// to subscribers; the remaining fields are informational.
type StatusChanged struct {
	Type       string        `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	Kind       domain.Kind   `json:"kind"`
	EntityID   uuid.UUID     `json:"entity_id"`
	EntityName string        `json:"entity_name,omitempty"`
	From       domain.Status `json:"from"`
	To         domain.Status `json:"to"`
	Automatic  bool          `json:"automatic"`
}

// Publisher receives status change notifications.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChanged) error
}

// Publishers fans one event out to several publishers. Every publisher is
// called even when an earlier one fails.
type Publishers []Publisher

func (ps Publishers) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	var errs []error
	for _, p := range ps {
		if err := p.PublishStatusChanged(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StateStore is the in-process view of entities that UI-facing readers
// observe. The executor pushes every committed entity into it.
type StateStore interface {
	Put(t *domain.Tracked)
}

type nopPublisher struct{}

func (nopPublisher) PublishStatusChanged(context.Context, StatusChanged) error { return nil }

type nopStateStore struct{}

func (nopStateStore) Put(*domain.Tracked) {}
