package store

import "time"

type FocusSession struct {
	ID        int64
	Task      string
	Seconds   int
	CreatedAt time.Time
}

// TaskTotal is the summed focus time of one task.
type TaskTotal struct {
	Task    string
	Seconds int
}

// DayTotal is the summed focus time of one UTC calendar day.
type DayTotal struct {
	Date         string // YYYY-MM-DD
	TotalSeconds int
}

// SessionFilter is used to filter focus sessions in queries.
type SessionFilter struct {
	Task  string
	From  *time.Time
	To    *time.Time
	Limit int
}
