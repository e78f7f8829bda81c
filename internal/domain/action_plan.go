package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ActionPlan struct {
	Tracked
	CoordinatorID *uuid.UUID  `json:"coordinator_id,omitempty"`
	TeamIDs       []uuid.UUID `json:"team_ids"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewActionPlan builds an active plan in its initial status with an empty log.
func NewActionPlan(name string, start, end time.Time, coordinatorID *uuid.UUID, teamIDs []uuid.UUID, now time.Time) (*ActionPlan, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, fmt.Errorf("domain.NewActionPlan: %w", err)
	}
	if teamIDs == nil {
		teamIDs = []uuid.UUID{}
	}

	return &ActionPlan{
		Tracked: Tracked{
			ID:         uuid.New(),
			Kind:       KindActionPlan,
			Name:       name,
			Status:     StatusNotStarted,
			StartDate:  start,
			EndDate:    end,
			StatusLogs: []StatusLogEntry{},
			Active:     true,
			UpdatedAt:  now,
		},
		CoordinatorID: coordinatorID,
		TeamIDs:       teamIDs,
		CreatedAt:     now,
	}, nil
}

type ActionPlanFilter struct {
	Status        Status
	CoordinatorID *uuid.UUID
	// Overlapping plans intersect [From, To]; zero values leave the side open.
	From time.Time
	To   time.Time
}

type ActionPlanRepository interface {
	TrackedRepository
	Create(ctx context.Context, p *ActionPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*ActionPlan, error)
	List(ctx context.Context, f ActionPlanFilter) ([]*ActionPlan, error)
	Update(ctx context.Context, p *ActionPlan) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
