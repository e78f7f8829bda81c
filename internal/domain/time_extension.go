package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
)

// TimeExtension is a request to push an action plan's end date.
type TimeExtension struct {
	ID              uuid.UUID       `json:"id"`
	ActionPlanID    uuid.UUID       `json:"action_plan_id"`
	OriginalEndDate time.Time       `json:"original_end_date"`
	NewEndDate      time.Time       `json:"new_end_date"`
	Reason          string          `json:"reason"`
	Comments        string          `json:"comments,omitempty"`
	RequestedBy     uuid.UUID       `json:"requested_by"`
	RequestedAt     time.Time       `json:"requested_at"`
	Status          ExtensionStatus `json:"status"`
	DecidedBy       *uuid.UUID      `json:"decided_by,omitempty"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty"`
}

// NewTimeExtension opens a pending request. The new end date must fall after
// the plan's current one.
func NewTimeExtension(plan *ActionPlan, newEnd time.Time, reason, comments string, requestedBy uuid.UUID, now time.Time) (*TimeExtension, error) {
	if !newEnd.After(plan.EndDate) {
		return nil, fmt.Errorf("domain.NewTimeExtension: %w", ErrInvalidDateRange)
	}

	return &TimeExtension{
		ID:              uuid.New(),
		ActionPlanID:    plan.ID,
		OriginalEndDate: plan.EndDate,
		NewEndDate:      newEnd,
		Reason:          reason,
		Comments:        comments,
		RequestedBy:     requestedBy,
		RequestedAt:     now,
		Status:          ExtensionPending,
	}, nil
}

// Decide closes a pending request.
func (e *TimeExtension) Decide(approve bool, by uuid.UUID, now time.Time) error {
	if e.Status != ExtensionPending {
		return fmt.Errorf("domain.TimeExtension.Decide: extension is %s: %w", e.Status, ErrConflict)
	}

	e.Status = ExtensionRejected
	if approve {
		e.Status = ExtensionApproved
	}
	e.DecidedBy = &by
	e.DecidedAt = &now
	return nil
}

type TimeExtensionRepository interface {
	Create(ctx context.Context, e *TimeExtension) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimeExtension, error)
	ListByActionPlan(ctx context.Context, actionPlanID uuid.UUID) ([]*TimeExtension, error)
	// Decide stores the decision; an approval also moves the plan's end date
	// in the same transaction.
	Decide(ctx context.Context, e *TimeExtension) error
}
