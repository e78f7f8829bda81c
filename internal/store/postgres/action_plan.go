package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plano/internal/domain"
)

const actionPlanColumns = trackedColumns + `, coordinator_id, team_ids, created_at`

type ActionPlanRepo struct {
	trackedTable
}

func NewActionPlanRepo(pool *pgxpool.Pool) *ActionPlanRepo {
	return &ActionPlanRepo{trackedTable{pool: pool, table: "action_plans", rules: domain.ActionPlanRules, caller: "actionPlanRepo"}}
}

func (r *ActionPlanRepo) Create(ctx context.Context, p *domain.ActionPlan) error {
	logs, err := json.Marshal(p.StatusLogs)
	if err != nil {
		return fmt.Errorf("actionPlanRepo.Create: marshal status_logs: %w", err)
	}
	team, err := json.Marshal(p.TeamIDs)
	if err != nil {
		return fmt.Errorf("actionPlanRepo.Create: marshal team_ids: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO action_plans (id, name, status, start_date, end_date, status_logs, active, updated_at,
		                           coordinator_id, team_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Status, p.StartDate, p.EndDate, logs, p.Active, p.UpdatedAt,
		p.CoordinatorID, team, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("actionPlanRepo.Create: %w", err)
	}

	return nil
}

func (r *ActionPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActionPlan, error) {
	p, err := r.scanActionPlan(r.pool.QueryRow(ctx,
		`SELECT `+actionPlanColumns+` FROM action_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("actionPlanRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("actionPlanRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *ActionPlanRepo) List(ctx context.Context, f domain.ActionPlanFilter) ([]*domain.ActionPlan, error) {
	var c conditions
	if f.Status != "" {
		c.add("status = ?", f.Status)
	}
	if f.CoordinatorID != nil {
		c.add("coordinator_id = ?", *f.CoordinatorID)
	}
	if !f.From.IsZero() {
		c.add("end_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		c.add("start_date <= ?", f.To)
	}

	query := `SELECT ` + actionPlanColumns + ` FROM action_plans`
	query += c.clause()
	query += ` ORDER BY start_date, created_at LIMIT 1000`

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("actionPlanRepo.List: %w", err)
	}
	defer rows.Close()

	var plans []*domain.ActionPlan
	for rows.Next() {
		p, err := r.scanActionPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("actionPlanRepo.List: scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("actionPlanRepo.List: rows: %w", err)
	}

	return plans, nil
}

func (r *ActionPlanRepo) Update(ctx context.Context, p *domain.ActionPlan) error {
	team, err := json.Marshal(p.TeamIDs)
	if err != nil {
		return fmt.Errorf("actionPlanRepo.Update: marshal team_ids: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE action_plans SET name = $1, start_date = $2, end_date = $3,
		        coordinator_id = $4, team_ids = $5, updated_at = $6
		 WHERE id = $7`,
		p.Name, p.StartDate, p.EndDate, p.CoordinatorID, team, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("actionPlanRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("actionPlanRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ActionPlanRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, id, active)
}

func (r *ActionPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, id)
}

func (r *ActionPlanRepo) scanActionPlan(row rowScanner) (*domain.ActionPlan, error) {
	var (
		p    domain.ActionPlan
		d    trackedDest
		team []byte
	)
	dest := append(d.targets(&p.Tracked), &p.CoordinatorID, &team, &p.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := d.decode(r.rules, &p.Tracked); err != nil {
		return nil, err
	}

	p.TeamIDs = []uuid.UUID{}
	if len(team) > 0 {
		if err := json.Unmarshal(team, &p.TeamIDs); err != nil {
			return nil, fmt.Errorf("unmarshal team_ids: %w", err)
		}
	}
	return &p, nil
}
