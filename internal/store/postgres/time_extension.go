package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plano/internal/domain"
)

const timeExtensionColumns = `id, action_plan_id, original_end_date, new_end_date, reason, comments,
	requested_by, requested_at, status, decided_by, decided_at`

type TimeExtensionRepo struct {
	pool *pgxpool.Pool
}

func NewTimeExtensionRepo(pool *pgxpool.Pool) *TimeExtensionRepo {
	return &TimeExtensionRepo{pool: pool}
}

func (r *TimeExtensionRepo) Create(ctx context.Context, e *domain.TimeExtension) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO time_extensions (`+timeExtensionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.ActionPlanID, e.OriginalEndDate, e.NewEndDate, e.Reason, e.Comments,
		e.RequestedBy, e.RequestedAt, e.Status, e.DecidedBy, e.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("timeExtensionRepo.Create: %w", err)
	}

	return nil
}

func (r *TimeExtensionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeExtension, error) {
	var e domain.TimeExtension

	err := r.pool.QueryRow(ctx,
		`SELECT `+timeExtensionColumns+` FROM time_extensions WHERE id = $1`, id,
	).Scan(scanTimeExtensionTargets(&e)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("timeExtensionRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("timeExtensionRepo.GetByID: %w", err)
	}

	return &e, nil
}

func (r *TimeExtensionRepo) ListByActionPlan(ctx context.Context, actionPlanID uuid.UUID) ([]*domain.TimeExtension, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+timeExtensionColumns+` FROM time_extensions
		 WHERE action_plan_id = $1
		 ORDER BY requested_at DESC`,
		actionPlanID,
	)
	if err != nil {
		return nil, fmt.Errorf("timeExtensionRepo.ListByActionPlan: %w", err)
	}
	defer rows.Close()

	var out []*domain.TimeExtension
	for rows.Next() {
		var e domain.TimeExtension
		if err := rows.Scan(scanTimeExtensionTargets(&e)...); err != nil {
			return nil, fmt.Errorf("timeExtensionRepo.ListByActionPlan: scan: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timeExtensionRepo.ListByActionPlan: rows: %w", err)
	}

	return out, nil
}

// Decide records the decision on a pending extension. An approval moves the
// plan's end date in the same transaction; the plan's status is untouched.
func (r *TimeExtensionRepo) Decide(ctx context.Context, e *domain.TimeExtension) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("timeExtensionRepo.Decide: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx,
		`UPDATE time_extensions SET status = $1, decided_by = $2, decided_at = $3
		 WHERE id = $4 AND status = $5`,
		e.Status, e.DecidedBy, e.DecidedAt, e.ID, domain.ExtensionPending,
	)
	if err != nil {
		return fmt.Errorf("timeExtensionRepo.Decide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("timeExtensionRepo.Decide: not pending: %w", domain.ErrConflict)
	}

	if e.Status == domain.ExtensionApproved {
		tag, err = tx.Exec(ctx,
			`UPDATE action_plans SET end_date = $1, updated_at = $2 WHERE id = $3`,
			e.NewEndDate, e.DecidedAt, e.ActionPlanID,
		)
		if err != nil {
			return fmt.Errorf("timeExtensionRepo.Decide: move end date: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("timeExtensionRepo.Decide: action plan: %w", domain.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("timeExtensionRepo.Decide: commit: %w", err)
	}

	return nil
}

func scanTimeExtensionTargets(e *domain.TimeExtension) []any {
	return []any{
		&e.ID, &e.ActionPlanID, &e.OriginalEndDate, &e.NewEndDate, &e.Reason, &e.Comments,
		&e.RequestedBy, &e.RequestedAt, &e.Status, &e.DecidedBy, &e.DecidedAt,
	}
}
