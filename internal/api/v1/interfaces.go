package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
	ActionPlans() domain.ActionPlanRepository
	TimeExtensions() domain.TimeExtensionRepository
}

// StatusService checks and applies status transitions.
// *lifecycle.Executor satisfies this interface.
type StatusService interface {
	Check(ctx context.Context, kind domain.Kind, id uuid.UUID, to domain.Status) (domain.Validation, error)
	Apply(ctx context.Context, kind domain.Kind, id uuid.UUID, req lifecycle.TransitionRequest) (*lifecycle.Result, error)
}

// StatusReader serves the status view of entities to read-only endpoints.
// *cache.Store satisfies this interface.
type StatusReader interface {
	List(ctx context.Context, kind domain.Kind) ([]*domain.Tracked, error)
	Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Tracked, error)
	Invalidate(kind domain.Kind)
}

// MonitorRunner triggers a delay scan on demand.
// lifecycle.Monitors satisfies this interface.
type MonitorRunner interface {
	Scan(ctx context.Context, kind domain.Kind) []lifecycle.ScanReport
}
