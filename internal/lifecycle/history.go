package lifecycle

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

// InvalidDate replaces the date of an entry whose timestamp cannot be parsed.
const InvalidDate = "invalid date"

// HistoryDateLayout is the layout used for readable history dates.
const HistoryDateLayout = "2006-01-02 15:04"

// HistorySource is one entity's log, tagged with where it came from.
type HistorySource struct {
	Kind       domain.Kind
	EntityID   uuid.UUID
	EntityName string
	Logs       []domain.StatusLogEntry
}

// SourceOf tags the log of t.
func SourceOf(t *domain.Tracked) HistorySource {
	return HistorySource{
		Kind:       t.Kind,
		EntityID:   t.ID,
		EntityName: t.Name,
		Logs:       t.StatusLogs,
	}
}

// HistoryLine is one rendered audit entry.
type HistoryLine struct {
	Kind          domain.Kind `json:"kind"`
	EntityID      uuid.UUID   `json:"entity_id"`
	EntityName    string      `json:"entity_name,omitempty"`
	EntryID       uuid.UUID   `json:"entry_id"`
	From          string      `json:"from"`
	To            string      `json:"to"`
	Date          string      `json:"date"`
	Automatic     bool        `json:"automatic"`
	Justification string      `json:"justification,omitempty"`
	SystemNotes   string      `json:"system_notes,omitempty"`
	Actor         string      `json:"actor,omitempty"`

	at    time.Time
	valid bool
}

// Transition renders "<from> → <to>".
func (l HistoryLine) Transition() string {
	return l.From + " → " + l.To
}

// String renders the whole line on one row.
func (l HistoryLine) String() string {
	var b strings.Builder
	b.WriteString(l.Date)
	b.WriteString("  ")
	if l.EntityName != "" {
		b.WriteString(l.EntityName)
		b.WriteString(": ")
	}
	b.WriteString(l.Transition())
	if l.Automatic {
		b.WriteString(" [Automatic]")
	}
	if l.Justification != "" {
		b.WriteString(" Justification: ")
		b.WriteString(l.Justification)
	}
	if l.SystemNotes != "" {
		b.WriteString(" (")
		b.WriteString(l.SystemNotes)
		b.WriteString(")")
	} else if l.Actor != "" {
		b.WriteString(" by ")
		b.WriteString(l.Actor)
	}
	return b.String()
}

// BuildHistory pools the logs of every source and orders them newest first.
// Entries with an unparseable timestamp keep their relative order and sort
// after all dated entries. Unknown kinds and status codes render as their
// raw codes.
func BuildHistory(sources ...HistorySource) []HistoryLine {
	var lines []HistoryLine
	for _, src := range sources {
		rules, _ := domain.RulesFor(src.Kind)
		for _, e := range src.Logs {
			lines = append(lines, renderEntry(rules, src, e))
		}
	}

	slices.SortStableFunc(lines, func(a, b HistoryLine) int {
		switch {
		case a.valid && b.valid:
			return b.at.Compare(a.at)
		case a.valid:
			return -1
		case b.valid:
			return 1
		default:
			return 0
		}
	})

	return lines
}

func renderEntry(rules *domain.Rules, src HistorySource, e domain.StatusLogEntry) HistoryLine {
	line := HistoryLine{
		Kind:          src.Kind,
		EntityID:      cmp.Or(src.EntityID, e.EntityID),
		EntityName:    src.EntityName,
		EntryID:       e.ID,
		From:          labelOf(rules, e.FromStatus),
		To:            labelOf(rules, e.ToStatus),
		Automatic:     e.Automatic,
		Justification: e.Justification,
		SystemNotes:   e.SystemNotes,
		Date:          InvalidDate,
	}

	if at, ok := e.Time(); ok {
		line.at = at
		line.valid = true
		line.Date = at.UTC().Format(HistoryDateLayout)
	}

	if !e.Automatic || e.SystemNotes == "" {
		line.Actor = e.UserName
	}

	return line
}

func labelOf(rules *domain.Rules, s domain.Status) string {
	if rules == nil {
		return string(s)
	}
	return rules.Label(s)
}
