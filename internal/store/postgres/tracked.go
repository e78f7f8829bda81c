package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plano/internal/domain"
)

// trackedColumns are the status-managed columns shared by tasks and action plans.
const trackedColumns = `id, name, status, start_date, end_date, status_logs, active, updated_at`

// trackedTable implements domain.TrackedRepository over one entity table.
type trackedTable struct {
	pool   *pgxpool.Pool
	table  string
	rules  *domain.Rules
	caller string
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// trackedDest holds the raw values of trackedColumns until they are decoded.
type trackedDest struct {
	status string
	logs   []byte
}

func (d *trackedDest) targets(t *domain.Tracked) []any {
	return []any{&t.ID, &t.Name, &d.status, &t.StartDate, &t.EndDate, &d.logs, &t.Active, &t.UpdatedAt}
}

func (d *trackedDest) decode(rules *domain.Rules, t *domain.Tracked) error {
	status, err := rules.ParseStatus(d.status)
	if err != nil {
		return err
	}
	t.Kind = rules.Kind()
	t.Status = status

	t.StatusLogs = []domain.StatusLogEntry{}
	if len(d.logs) > 0 {
		if err := json.Unmarshal(d.logs, &t.StatusLogs); err != nil {
			return fmt.Errorf("unmarshal status_logs: %w", err)
		}
	}
	return nil
}

func (r *trackedTable) scanTracked(row rowScanner) (*domain.Tracked, error) {
	var (
		t domain.Tracked
		d trackedDest
	)
	if err := row.Scan(d.targets(&t)...); err != nil {
		return nil, err
	}
	if err := d.decode(r.rules, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trackedTable) ListTracked(ctx context.Context) ([]*domain.Tracked, error) {
	caller := r.caller + ".ListTracked"

	rows, err := r.pool.Query(ctx,
		`SELECT `+trackedColumns+` FROM `+r.table+` ORDER BY end_date, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}
	defer rows.Close()

	var out []*domain.Tracked
	for rows.Next() {
		t, err := r.scanTracked(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return out, nil
}

func (r *trackedTable) GetTracked(ctx context.Context, id uuid.UUID) (*domain.Tracked, error) {
	caller := r.caller + ".GetTracked"

	t, err := r.scanTracked(r.pool.QueryRow(ctx,
		`SELECT `+trackedColumns+` FROM `+r.table+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}

	return t, nil
}

// ApplyStatus sets the status, appends the log entry and bumps updated_at in
// one statement. The row only matches while it still holds u.From.
func (r *trackedTable) ApplyStatus(ctx context.Context, id uuid.UUID, u domain.StatusUpdate) error {
	caller := r.caller + ".ApplyStatus"

	entry, err := json.Marshal(u.Entry)
	if err != nil {
		return fmt.Errorf("%s: marshal entry: %w", caller, err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+`
		 SET status = $1, status_logs = status_logs || jsonb_build_array($2::jsonb), updated_at = $3
		 WHERE id = $4 AND status = $5`,
		u.To, entry, u.UpdatedAt, id, u.From,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", caller, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.table+` WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: check existence: %w", caller, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}

	return fmt.Errorf("%s: status is no longer %s: %w", caller, u.From, domain.ErrConflict)
}

func (r *trackedTable) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	caller := r.caller + ".SetActive"

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+` SET active = $1, updated_at = now() WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", caller, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}

	return nil
}

func (r *trackedTable) delete(ctx context.Context, id uuid.UUID) error {
	caller := r.caller + ".Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", caller, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}

	return nil
}

// conditions accumulates AND-ed filters with positional placeholders.
type conditions struct {
	where []string
	args  []any
}

// add appends cond, whose single "?" becomes the next placeholder.
func (c *conditions) add(cond string, v any) {
	c.args = append(c.args, v)
	c.where = append(c.where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(c.args)), 1))
}

func (c *conditions) clause() string {
	if len(c.where) == 0 {
		return ""
	}
	return ` WHERE ` + strings.Join(c.where, " AND ")
}
