package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
	"github.com/gosuda/plano/internal/messenger"
)

// ErrPlatformNotFound is returned when a messenger platform is not registered.
var ErrPlatformNotFound = errors.New("notify: platform not found") //nolint:gochecknoglobals // sentinel error

// MessengerRegistry maps platform names to Messenger implementations.
type MessengerRegistry interface {
	Get(platform string) (messenger.Messenger, bool)
}

// Notifier posts status change alerts to a chat channel. It implements
// lifecycle.Publisher; by default only automatic delays are announced.
type Notifier struct {
	messengers MessengerRegistry
	platform   string
	channelID  string
	alertAll   bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAllChanges announces every status change, not only automatic delays.
func WithAllChanges() Option {
	return func(n *Notifier) {
		n.alertAll = true
	}
}

// New creates a Notifier posting to channelID on platform.
func New(messengers MessengerRegistry, platform, channelID string, opts ...Option) *Notifier {
	n := &Notifier{
		messengers: messengers,
		platform:   platform,
		channelID:  channelID,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var _ lifecycle.Publisher = (*Notifier)(nil) //nolint:gochecknoglobals // compile-time check

// PublishStatusChanged announces ev when it qualifies.
func (n *Notifier) PublishStatusChanged(ctx context.Context, ev lifecycle.StatusChanged) error {
	if !ev.Automatic && !n.alertAll {
		return nil
	}

	msg, ok := n.messengers.Get(n.platform)
	if !ok {
		return fmt.Errorf("notify.Notifier.PublishStatusChanged: platform %q: %w", n.platform, ErrPlatformNotFound)
	}

	id, err := msg.SendStatusAlert(ctx, n.channelID, AlertFor(ev))
	if err != nil {
		return fmt.Errorf("notify.Notifier.PublishStatusChanged: send: %w", err)
	}

	log.Debug().
		Str("platform", n.platform).
		Str("message_id", string(id)).
		Str("entity_id", ev.EntityID.String()).
		Msg("status alert sent")

	return nil
}

// AlertFor renders ev with display labels. Unknown kinds and statuses keep
// their raw codes.
func AlertFor(ev lifecycle.StatusChanged) messenger.StatusAlert {
	a := messenger.StatusAlert{
		Kind:       ev.Kind.Label(),
		EntityName: ev.EntityName,
		From:       string(ev.From),
		To:         string(ev.To),
		Automatic:  ev.Automatic,
		At:         ev.Timestamp,
	}
	if rules, ok := domain.RulesFor(ev.Kind); ok {
		a.From = rules.Label(ev.From)
		a.To = rules.Label(ev.To)
	}
	if a.EntityName == "" {
		a.EntityName = ev.EntityID.String()
	}
	return a
}
