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

const taskColumns = trackedColumns + `, description, assignee_id, action_plan_id, created_at`

type TaskRepo struct {
	trackedTable
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{trackedTable{pool: pool, table: "tasks", rules: domain.TaskRules, caller: "taskRepo"}}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	logs, err := json.Marshal(t.StatusLogs)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: marshal status_logs: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO tasks (id, name, status, start_date, end_date, status_logs, active, updated_at,
		                    description, assignee_id, action_plan_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Name, t.Status, t.StartDate, t.EndDate, logs, t.Active, t.UpdatedAt,
		t.Description, t.AssigneeID, t.ActionPlanID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := r.scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	var c conditions
	if f.Status != "" {
		c.add("status = ?", f.Status)
	}
	if f.AssigneeID != nil {
		c.add("assignee_id = ?", *f.AssigneeID)
	}
	if f.ActionPlanID != nil {
		c.add("action_plan_id = ?", *f.ActionPlanID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	query += c.clause()
	query += ` ORDER BY end_date, created_at LIMIT 1000`

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("taskRepo.List: scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.List: rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET name = $1, description = $2, start_date = $3, end_date = $4,
		        assignee_id = $5, action_plan_id = $6, updated_at = $7
		 WHERE id = $8`,
		t.Name, t.Description, t.StartDate, t.EndDate,
		t.AssigneeID, t.ActionPlanID, t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, id, active)
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, id)
}

func (r *TaskRepo) scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t domain.Task
		d trackedDest
	)
	dest := append(d.targets(&t.Tracked), &t.Description, &t.AssigneeID, &t.ActionPlanID, &t.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := d.decode(r.rules, &t.Tracked); err != nil {
		return nil, err
	}
	return &t, nil
}
