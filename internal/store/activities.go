package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sadopc/timesheet/internal/activity"
)

const activityColumns = `id, date, start_time, duration, task, collaborator, warnings`

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func encodeWarnings(w []string) (string, error) {
	if len(w) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode warnings: %w", err)
	}
	return string(b), nil
}

// SaveActivity inserts a, or replaces the row with the same id.
func (s *Store) SaveActivity(ctx context.Context, a *activity.Activity) error {
	warnings, err := encodeWarnings(a.Warnings())
	if err != nil {
		return err
	}
	now := nowString()
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO activities (id, date, start_time, duration, task, collaborator, warnings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_time = excluded.start_time,
			duration = excluded.duration,
			task = excluded.task,
			collaborator = excluded.collaborator,
			warnings = excluded.warnings,
			updated_at = excluded.updated_at`,
		a.ID(), a.DateString(), a.StartTime(), a.Duration(), a.Task(), a.Collaborator(), warnings, now, now,
	)
	if err != nil {
		return fmt.Errorf("save activity %s: %w", a.ID(), err)
	}
	return nil
}

// SaveActivities saves every activity in one transaction.
func (s *Store) SaveActivities(ctx context.Context, activities []*activity.Activity) error {
	return s.WithinTx(ctx, func(tx *Store) error {
		for _, a := range activities {
			if err := tx.SaveActivity(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetActivity(ctx context.Context, id string) (*activity.Activity, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get activity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	return a, nil
}

// ListActivities returns activities in insertion order within each date.
func (s *Store) ListActivities(ctx context.Context, f ActivityFilter) ([]*activity.Activity, error) {
	var (
		where []string
		args  []any
	)
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if f.Collaborator != "" {
		where = append(where, "collaborator = ?")
		args = append(args, f.Collaborator)
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, rowid"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete activity %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearActivities removes every activity and day marker.
func (s *Store) ClearActivities(ctx context.Context) error {
	return s.WithinTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM activities`); err != nil {
			return fmt.Errorf("clear activities: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM day_markers`); err != nil {
			return fmt.Errorf("clear day markers: %w", err)
		}
		return nil
	})
}

func (s *Store) CountActivities(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// DailySummaries totals logged minutes per date, oldest first.
func (s *Store) DailySummaries(ctx context.Context, from, to string) ([]DailySummary, error) {
	list, err := s.ListActivities(ctx, ActivityFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	byDate := map[string]*DailySummary{}
	var order []string
	for _, a := range list {
		d := a.DateString()
		sum, ok := byDate[d]
		if !ok {
			sum = &DailySummary{Date: d}
			byDate[d] = sum
			order = append(order, d)
		}
		sum.ActivityCount++
		sum.TotalMinutes += a.DurationMinutes()
		if a.HasValidationIssues() {
			sum.WarningCount++
		}
	}

	out := make([]DailySummary, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(r rowScanner) (*activity.Activity, error) {
	var (
		p        activity.Params
		warnings string
	)
	if err := r.Scan(&p.ID, &p.Date, &p.StartTime, &p.Duration, &p.Task, &p.Collaborator, &warnings); err != nil {
		return nil, err
	}
	if warnings != "" {
		if err := json.Unmarshal([]byte(warnings), &p.Warnings); err != nil {
			return nil, fmt.Errorf("activity %s: decode warnings: %w", p.ID, err)
		}
	}
	return activity.Restore(p)
}
