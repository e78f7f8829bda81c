package slack_test

import (
	"testing"
	"time"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/plano/internal/messenger"
	planoslack "github.com/gosuda/plano/internal/messenger/slack"
)

func TestBuildStatusBlocks(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 11, 0, 5, 0, 0, time.UTC)

	tests := []struct {
		name       string
		alert      messenger.StatusAlert
		wantOrigin string
	}{
		{
			name:       "automatic",
			alert:      messenger.StatusAlert{Kind: "Task", EntityName: "Write report", From: "In Progress", To: "Delayed", Automatic: true, At: at},
			wantOrigin: "Automatic: deadline exceeded · 2024-01-11 00:05 UTC",
		},
		{
			name:       "manual without time",
			alert:      messenger.StatusAlert{Kind: "Action Plan", EntityName: "Q1", From: "Completed", To: "In Progress"},
			wantOrigin: "Changed by a user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			blocks := planoslack.BuildStatusBlocks(tt.alert)
			require.Len(t, blocks, 2)

			section, ok := blocks[0].(*slacklib.SectionBlock)
			require.True(t, ok, "first block should be a SectionBlock")
			require.NotNil(t, section.Text)
			assert.Equal(t, slacklib.MarkdownType, section.Text.Type)
			assert.Contains(t, section.Text.Text, tt.alert.EntityName)
			assert.Contains(t, section.Text.Text, "`"+tt.alert.From+"` → `"+tt.alert.To+"`")

			footer, ok := blocks[1].(*slacklib.ContextBlock)
			require.True(t, ok, "second block should be a ContextBlock")
			require.Len(t, footer.ContextElements.Elements, 1)
			text, ok := footer.ContextElements.Elements[0].(*slacklib.TextBlockObject)
			require.True(t, ok)
			assert.Equal(t, tt.wantOrigin, text.Text)
		})
	}
}

func TestStatusFallbackText(t *testing.T) {
	t.Parallel()

	got := planoslack.StatusFallbackText(messenger.StatusAlert{Kind: "Task", EntityName: "Write report", From: "In Progress", To: "Delayed"})
	assert.Equal(t, "Task Write report: In Progress → Delayed", got)
}
