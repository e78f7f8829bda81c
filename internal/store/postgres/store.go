package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plano/internal/domain"
)

type Store struct {
	pool           *pgxpool.Pool
	tasks          *TaskRepo
	actionPlans    *ActionPlanRepo
	timeExtensions *TimeExtensionRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:           pool,
		tasks:          NewTaskRepo(pool),
		actionPlans:    NewActionPlanRepo(pool),
		timeExtensions: NewTimeExtensionRepo(pool),
	}, nil
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.pool)
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Tasks() domain.TaskRepository                   { return s.tasks }
func (s *Store) ActionPlans() domain.ActionPlanRepository       { return s.actionPlans }
func (s *Store) TimeExtensions() domain.TimeExtensionRepository { return s.timeExtensions }

// Tracked returns the status view of every kind, keyed by kind.
func (s *Store) Tracked() map[domain.Kind]domain.TrackedRepository {
	return map[domain.Kind]domain.TrackedRepository{
		domain.KindTask:       s.tasks,
		domain.KindActionPlan: s.actionPlans,
	}
}
