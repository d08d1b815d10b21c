package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Fixed width so that text comparison in SQL orders the same as time.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `t.id, t.title, t.description, t.estimated_duration, t.deadline, t.priority, t.flexibility,
	t.energy_level, t.is_completed, t.actual_duration, t.scheduled_start, t.scheduled_end, t.created_at, t.completed_at,
	s.urgency_score, s.importance_score, s.risk_score, s.final_score, s.scored_at`

const taskFrom = ` FROM tasks t LEFT JOIN task_scores s ON s.task_id = t.id`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	// foreign_keys is a per-connection pragma.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, estimated_duration, deadline, priority, flexibility, energy_level,
			is_completed, actual_duration, scheduled_start, scheduled_end, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Description, in.EstimatedDuration, mustTime(in.Deadline), in.Priority, in.Flexibility, in.Energy,
		boolInt(in.IsCompleted), nullInt(in.ActualDuration), nullTime(in.ScheduledStart), nullTime(in.ScheduledEnd),
		mustTime(in.CreatedAt), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+taskFrom+` WHERE t.id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

// UpdateTask rewrites every task column. The score snapshot is left alone.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, estimated_duration = ?, deadline = ?, priority = ?, flexibility = ?,
			energy_level = ?, is_completed = ?, actual_duration = ?, scheduled_start = ?, scheduled_end = ?, completed_at = ?
		WHERE id = ?`,
		in.Title, in.Description, in.EstimatedDuration, mustTime(in.Deadline), in.Priority, in.Flexibility,
		in.Energy, boolInt(in.IsCompleted), nullInt(in.ActualDuration), nullTime(in.ScheduledStart), nullTime(in.ScheduledEnd),
		nullTime(in.CompletedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListTasks returns tasks ordered by deadline, then creation time.
func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + taskFrom
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if !filter.IncludeCompleted {
		clauses = append(clauses, "t.is_completed = 0")
	}
	if filter.DeadlineFrom != nil {
		clauses = append(clauses, "t.deadline >= ?")
		args = append(args, mustTime(*filter.DeadlineFrom))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY t.deadline ASC, t.created_at ASC, t.id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SavePlacement(ctx context.Context, in Placement) error {
	if !in.End.After(in.Start) {
		return fmt.Errorf("storage: placement for %q ends before it starts", in.TaskID)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET scheduled_start = ?, scheduled_end = ? WHERE id = ?`,
		mustTime(in.Start), mustTime(in.End), in.TaskID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ClearPlacement(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET scheduled_start = NULL, scheduled_end = NULL WHERE id = ?`, taskID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SaveScores(ctx context.Context, taskID string, in Scores) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_scores (task_id, urgency_score, importance_score, risk_score, final_score, scored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (task_id) DO UPDATE SET
			urgency_score = excluded.urgency_score,
			importance_score = excluded.importance_score,
			risk_score = excluded.risk_score,
			final_score = excluded.final_score,
			scored_at = excluded.scored_at`,
		taskID, in.Urgency, in.Importance, in.Risk, in.Final, mustTime(in.ScoredAt),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return ErrNotFound
	}
	return err
}

func (r *SQLiteRepository) GetPreferences(ctx context.Context) (Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT work_start, work_end, max_deep_focus_minutes, buffer_minutes, updated_at
		FROM preferences WHERE id = 1`)
	var out Preferences
	var updated string
	if err := row.Scan(&out.WorkStart, &out.WorkEnd, &out.MaxDeepFocusMinutes, &out.BufferMinutes, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Preferences{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, in Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (id, work_start, work_end, max_deep_focus_minutes, buffer_minutes, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			max_deep_focus_minutes = excluded.max_deep_focus_minutes,
			buffer_minutes = excluded.buffer_minutes,
			updated_at = excluded.updated_at`,
		in.WorkStart, in.WorkEnd, in.MaxDeepFocusMinutes, in.BufferMinutes, mustTime(in.UpdatedAt),
	)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var deadline, created string
	var completed, start, end, scored sql.NullString
	var actual, urgency, importance, risk, final sql.NullInt64
	var isCompleted int
	if err := s.Scan(
		&out.ID, &out.Title, &out.Description, &out.EstimatedDuration, &deadline, &out.Priority, &out.Flexibility,
		&out.Energy, &isCompleted, &actual, &start, &end, &created, &completed,
		&urgency, &importance, &risk, &final, &scored,
	); err != nil {
		return Task{}, err
	}

	var err error
	if out.Deadline, err = parseRequiredTime(deadline); err != nil {
		return Task{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return Task{}, err
	}
	if out.ScheduledStart, err = parseNullableTime(start); err != nil {
		return Task{}, err
	}
	if out.ScheduledEnd, err = parseNullableTime(end); err != nil {
		return Task{}, err
	}
	if out.CompletedAt, err = parseNullableTime(completed); err != nil {
		return Task{}, err
	}
	out.IsCompleted = isCompleted == 1
	if actual.Valid {
		v := int(actual.Int64)
		out.ActualDuration = &v
	}
	if scored.Valid {
		scoredAt, parseErr := parseRequiredTime(scored.String)
		if parseErr != nil {
			return Task{}, parseErr
		}
		out.Scores = &Scores{
			Urgency:    int(urgency.Int64),
			Importance: int(importance.Int64),
			Risk:       int(risk.Int64),
			Final:      int(final.Int64),
			ScoredAt:   scoredAt,
		}
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
