package domain

import (
	"time"

	"github.com/google/uuid"
)

// AutomaticSystemNotes is stamped on every entry written by the deadline monitor.
const AutomaticSystemNotes = "automatic change by the system - deadline exceeded"

// Clock supplies the current instant. The lifecycle engine never reads
// time.Now directly so tests can pin the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Actor identifies the human behind an interactive status change.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// StatusLogEntry records one status transition. Entries are embedded in the
// owning entity and never change once appended.
//
// Timestamp is kept as the RFC 3339 string that was persisted so a damaged
// document still loads; use Time to parse it.
type StatusLogEntry struct {
	ID            uuid.UUID  `json:"id"`
	EntityID      uuid.UUID  `json:"entity_id"`
	FromStatus    Status     `json:"from_status"`
	ToStatus      Status     `json:"to_status"`
	Timestamp     string     `json:"timestamp"`
	Justification string     `json:"justification,omitempty"`
	Automatic     bool       `json:"automatic"`
	SystemNotes   string     `json:"system_notes,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	UserName      string     `json:"user_name,omitempty"`
}

// Time parses the entry timestamp.
func (e StatusLogEntry) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LogParams are the inputs of NewStatusLogEntry.
type LogParams struct {
	EntityID      uuid.UUID
	From          Status
	To            Status
	Justification string
	Automatic     bool
	Actor         *Actor
}

// NewStatusLogEntry builds a log entry stamped with a fresh ID and the
// clock's current instant. Automatic entries get the canonical system notes
// and never carry a justification or an actor.
func NewStatusLogEntry(clock Clock, p LogParams) StatusLogEntry {
	e := StatusLogEntry{
		ID:         uuid.New(),
		EntityID:   p.EntityID,
		FromStatus: p.From,
		ToStatus:   p.To,
		Timestamp:  clock.Now().UTC().Format(time.RFC3339Nano),
		Automatic:  p.Automatic,
	}

	if p.Automatic {
		e.SystemNotes = AutomaticSystemNotes
		return e
	}

	e.Justification = p.Justification
	if p.Actor != nil {
		id := p.Actor.ID
		e.UserID = &id
		e.UserName = p.Actor.Name
	}

	return e
}
