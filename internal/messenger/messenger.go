package messenger

import (
	"context"
	"time"
)

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// StatusAlert describes one status change in display terms.
type StatusAlert struct {
	Kind       string    // display name of the entity kind
	EntityName string    // name of the task or action plan
	From       string    // label of the previous status
	To         string    // label of the new status
	Automatic  bool      // set by the deadline monitor rather than a person
	At         time.Time // when the change was committed
}

// Messenger abstracts communication with a chat platform.
// Implementations handle platform-specific API calls; the interface is platform-agnostic.
type Messenger interface {
	// SendStatusAlert posts a formatted status change to a channel.
	SendStatusAlert(ctx context.Context, channelID string, alert StatusAlert) (MessageID, error)

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
