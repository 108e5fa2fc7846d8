package store

import (
	"context"
	"fmt"
	"time"
)

// WeekDays is the length of the trailing analytics window, today included.
const WeekDays = 7

func (s *Store) CreateSession(ctx context.Context, task string, seconds int, at time.Time) (*FocusSession, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO focus_sessions (task, seconds, created_at) VALUES (?, ?, ?)`,
		task, seconds, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(ctx, id)
}

func (s *Store) GetSession(ctx context.Context, id int64) (*FocusSession, error) {
	fs := &FocusSession{}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, task, seconds, created_at FROM focus_sessions WHERE id = ?`, id,
	).Scan(&fs.ID, &fs.Task, &fs.Seconds, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	fs.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return fs, nil
}

// ListSessions returns sessions newest first, narrowed by f.
func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]FocusSession, error) {
	query := `SELECT id, task, seconds, created_at FROM focus_sessions WHERE 1=1`
	var args []any

	if f.Task != "" {
		query += ` AND task = ?`
		args = append(args, f.Task)
	}
	if f.From != nil {
		query += ` AND created_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND created_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		var fs FocusSession
		var createdAt string
		if err := rows.Scan(&fs.ID, &fs.Task, &fs.Seconds, &createdAt); err != nil {
			return nil, err
		}
		fs.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sessions = append(sessions, fs)
	}
	return sessions, rows.Err()
}

// TaskTotals sums focus time per task for sessions created in [from, to).
func (s *Store) TaskTotals(ctx context.Context, from, to time.Time) ([]TaskTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task, COALESCE(SUM(seconds), 0)
		FROM focus_sessions
		WHERE created_at >= ? AND created_at < ?
		GROUP BY task
		ORDER BY task`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("task totals: %w", err)
	}
	defer rows.Close()

	var totals []TaskTotal
	for rows.Next() {
		var t TaskTotal
		if err := rows.Scan(&t.Task, &t.Seconds); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DayTotals sums focus time per UTC day for sessions created in [from, to).
func (s *Store) DayTotals(ctx context.Context, from, to time.Time) ([]DayTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at) AS day, COALESCE(SUM(seconds), 0)
		FROM focus_sessions
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("day totals: %w", err)
	}
	defer rows.Close()

	var totals []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.TotalSeconds); err != nil {
			return nil, err
		}
		totals = append(totals, d)
	}
	return totals, rows.Err()
}

// TodayByTask sums today's (UTC) focus time per task.
func (s *Store) TodayByTask(ctx context.Context, now time.Time) ([]TaskTotal, error) {
	start := DayStart(now)
	return s.TaskTotals(ctx, start, start.AddDate(0, 0, 1))
}

// LastWeek sums focus time per day over the trailing WeekDays days ending today.
func (s *Store) LastWeek(ctx context.Context, now time.Time) ([]DayTotal, error) {
	from, to := WeekRange(now)
	return s.DayTotals(ctx, from, to)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekRange returns [from, to) covering the trailing week, today included.
func WeekRange(now time.Time) (time.Time, time.Time) {
	end := DayStart(now).AddDate(0, 0, 1)
	return end.AddDate(0, 0, -WeekDays), end
}
