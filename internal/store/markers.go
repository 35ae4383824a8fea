package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sadopc/timesheet/internal/activity"
)

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveMarkers merges m into the stored markers of its date. Empty fields
// keep whatever was stored before.
func (s *Store) SaveMarkers(ctx context.Context, m activity.DayMarkers) error {
	if m.Date == "" {
		return fmt.Errorf("save markers: empty date")
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO day_markers (date, start_time, lunch_time, return_time, end_time, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			start_time  = COALESCE(excluded.start_time,  day_markers.start_time),
			lunch_time  = COALESCE(excluded.lunch_time,  day_markers.lunch_time),
			return_time = COALESCE(excluded.return_time, day_markers.return_time),
			end_time    = COALESCE(excluded.end_time,    day_markers.end_time),
			updated_at  = excluded.updated_at`,
		m.Date, nullable(m.Start), nullable(m.Lunch), nullable(m.Return), nullable(m.End), nowString(),
	)
	if err != nil {
		return fmt.Errorf("save markers %s: %w", m.Date, err)
	}
	return nil
}

// SaveMarkerBook stores every entry of book in one transaction.
func (s *Store) SaveMarkerBook(ctx context.Context, book activity.MarkerBook) error {
	return s.WithinTx(ctx, func(tx *Store) error {
		for _, d := range book.Dates() {
			if err := tx.SaveMarkers(ctx, book[d]); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkerBook loads every stored day marker.
func (s *Store) MarkerBook(ctx context.Context) (activity.MarkerBook, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT date, start_time, lunch_time, return_time, end_time FROM day_markers ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	book := activity.MarkerBook{}
	for rows.Next() {
		var (
			date                       string
			start, lunch, ret, endTime sql.NullString
		)
		if err := rows.Scan(&date, &start, &lunch, &ret, &endTime); err != nil {
			return nil, err
		}
		book[date] = activity.DayMarkers{
			Date:   date,
			Start:  start.String,
			Lunch:  lunch.String,
			Return: ret.String,
			End:    endTime.String,
		}
	}
	return book, rows.Err()
}
