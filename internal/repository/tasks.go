package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"meterdesk/internal/domain"
)

const taskColumns = `id, meter_id, assigned_user_id, assigned_by_user_id, task_date, status,
	meter_reading, photo_key, location_lat, location_lng, completed_at, created_at`

func (r *Repos) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	return out, err
}

func (r *Repos) ListTasksForUser(ctx context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+taskColumns+` FROM tasks WHERE assigned_user_id = $1 ORDER BY created_at DESC`, userID)
	return out, err
}

func (r *Repos) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.GetContext(ctx, &t,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTaskBatch inserts one PENDING task per meter inside one
// transaction. Exclusivity is re-checked at write time: any meter in the
// set that already holds a PENDING task aborts the whole batch, so a
// backend error can never leave a partial batch behind.
func (r *Repos) InsertTaskBatch(ctx context.Context, meterIDs []string, assigneeID, assignerID string, taskDate time.Time) ([]domain.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query, args, err := sqlx.In(
		`SELECT meter_id FROM tasks WHERE status = 'PENDING' AND meter_id IN (?)`, meterIDs)
	if err != nil {
		return nil, err
	}
	var taken []string
	if err := tx.SelectContext(ctx, &taken, tx.Rebind(query), args...); err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, fmt.Errorf("meters already assigned (%s): %w",
			strings.Join(taken, ", "), domain.ErrConflict)
	}

	out := make([]domain.Task, 0, len(meterIDs))
	for _, meterID := range meterIDs {
		var t domain.Task
		err := tx.GetContext(ctx, &t,
			`INSERT INTO tasks (meter_id, assigned_user_id, assigned_by_user_id, task_date, status)
			 VALUES ($1, $2, $3, $4, 'PENDING')
			 RETURNING `+taskColumns,
			meterID, assigneeID, assignerID, taskDate)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteTask applies the completion fields to a still-PENDING task.
// The status guard in the WHERE clause makes a second submission a no-op
// reported as a conflict rather than a silent double apply.
func (r *Repos) CompleteTask(ctx context.Context, id string, reading float64, photoKey *string, lat, lng float64, completedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET status = 'COMPLETED', meter_reading = $1, photo_key = $2,
		     location_lat = $3, location_lng = $4, completed_at = $5
		 WHERE id = $6 AND status = 'PENDING'`,
		reading, photoKey, lat, lng, completedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s is not pending: %w", id, domain.ErrConflict)
	}
	return nil
}

// TaskUpdate carries the administrative-override fields; nil means keep.
type TaskUpdate struct {
	AssignedUserID *string
	TaskDate       *time.Time
	Status         *domain.TaskStatus
	MeterReading   *float64
}

func (r *Repos) UpdateTask(ctx context.Context, id string, u TaskUpdate) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.AssignedUserID != nil {
		add("assigned_user_id", *u.AssignedUserID)
	}
	if u.TaskDate != nil {
		add("task_date", *u.TaskDate)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if u.MeterReading != nil {
		add("meter_reading", *u.MeterReading)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repos) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
