package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/plano/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackMessenger implements messenger.Messenger for Slack.
type SlackMessenger struct {
	api SlackAPI
}

// Compile-time interface check.
var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger with the given API client.
func NewSlackMessenger(api SlackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

// NewFromToken creates a SlackMessenger backed by the real Slack Web API.
func NewFromToken(botToken string) *SlackMessenger {
	return NewSlackMessenger(slacklib.New(botToken))
}

// SendStatusAlert posts a Block Kit status alert with a plain-text fallback.
func (m *SlackMessenger) SendStatusAlert(_ context.Context, channelID string, alert messenger.StatusAlert) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessage(channelID,
		slacklib.MsgOptionText(StatusFallbackText(alert), false),
		slacklib.MsgOptionBlocks(BuildStatusBlocks(alert)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendStatusAlert: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// Platform returns the messenger platform identifier.
func (m *SlackMessenger) Platform() string {
	return "slack"
}
