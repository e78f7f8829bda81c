package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Tracked is the status-managed part of a task or an action plan. The
// lifecycle engine only ever sees entities through this view.
type Tracked struct {
	ID         uuid.UUID        `json:"id"`
	Kind       Kind             `json:"kind"`
	Name       string           `json:"name"`
	Status     Status           `json:"status"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	StatusLogs []StatusLogEntry `json:"status_logs"`
	Active     bool             `json:"active"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// StatusUpdate is the single logical write produced by a transition: the new
// status, the entry appended to the log, and the refreshed modification time.
// From is the status the write expects to replace.
type StatusUpdate struct {
	From      Status
	To        Status
	Entry     StatusLogEntry
	UpdatedAt time.Time
}

// WithStatus returns a copy of t with u applied. The log slice is copied so
// the receiver is never mutated.
func (t *Tracked) WithStatus(u StatusUpdate) *Tracked {
	next := *t
	next.Status = u.To
	next.StatusLogs = append(slices.Clone(t.StatusLogs), u.Entry)
	next.UpdatedAt = u.UpdatedAt
	return &next
}

// Overdue reports whether the planned end date has passed at now.
func (t *Tracked) Overdue(now time.Time) bool {
	return now.After(t.EndDate)
}

func validateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// TrackedRepository is the persistence contract the lifecycle engine needs
// for one entity kind.
type TrackedRepository interface {
	ListTracked(ctx context.Context) ([]*Tracked, error)
	GetTracked(ctx context.Context, id uuid.UUID) (*Tracked, error)
	// ApplyStatus persists u atomically. It fails with ErrConflict when the
	// stored status is no longer u.From and ErrNotFound when id is unknown.
	ApplyStatus(ctx context.Context, id uuid.UUID, u StatusUpdate) error
}
