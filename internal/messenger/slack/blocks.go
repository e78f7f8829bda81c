package slack

import (
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/plano/internal/messenger"
)

// AlertTimeLayout is how alert timestamps are printed.
const AlertTimeLayout = "2006-01-02 15:04 MST"

// BuildStatusBlocks builds Slack Block Kit blocks for a status change alert.
// Automatic changes get a context line saying the system made them.
func BuildStatusBlocks(a messenger.StatusAlert) []slacklib.Block {
	text := fmt.Sprintf("*%s:* %s\n*Status:* `%s` → `%s`", a.Kind, a.EntityName, a.From, a.To)
	section := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil,
		nil,
	)

	origin := "Changed by a user"
	if a.Automatic {
		origin = "Automatic: deadline exceeded"
	}
	if !a.At.IsZero() {
		origin += " · " + a.At.UTC().Format(AlertTimeLayout)
	}
	footer := slacklib.NewContextBlock("status_origin",
		slacklib.NewTextBlockObject(slacklib.MarkdownType, origin, false, false),
	)

	return []slacklib.Block{section, footer}
}

// StatusFallbackText is the plain text shown by clients that cannot render blocks.
func StatusFallbackText(a messenger.StatusAlert) string {
	return fmt.Sprintf("%s %s: %s → %s", a.Kind, a.EntityName, a.From, a.To)
}
