package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	Tracked
	Description  string     `json:"description,omitempty"`
	AssigneeID   *uuid.UUID `json:"assignee_id,omitempty"`
	ActionPlanID *uuid.UUID `json:"action_plan_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewTask builds an active task in its initial status with an empty log.
func NewTask(name, description string, start, end time.Time, assigneeID, actionPlanID *uuid.UUID, now time.Time) (*Task, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, fmt.Errorf("domain.NewTask: %w", err)
	}

	return &Task{
		Tracked: Tracked{
			ID:         uuid.New(),
			Kind:       KindTask,
			Name:       name,
			Status:     StatusNotStarted,
			StartDate:  start,
			EndDate:    end,
			StatusLogs: []StatusLogEntry{},
			Active:     true,
			UpdatedAt:  now,
		},
		Description:  description,
		AssigneeID:   assigneeID,
		ActionPlanID: actionPlanID,
		CreatedAt:    now,
	}, nil
}

// Editable reports whether the task may still be edited or deleted.
func (t *Task) Editable() bool {
	return !TaskRules.IsTerminal(t.Status)
}

type TaskFilter struct {
	Status       Status
	AssigneeID   *uuid.UUID
	ActionPlanID *uuid.UUID
}

type TaskRepository interface {
	TrackedRepository
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, f TaskFilter) ([]*Task, error)
	// Update writes the descriptive fields and dates; status and logs are
	// left to ApplyStatus.
	Update(ctx context.Context, t *Task) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
