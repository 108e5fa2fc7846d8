package focus

// Session is one completed countdown, as sent to the backend.
type Session struct {
	Task    string `json:"task"`
	Seconds int    `json:"seconds"`
}

// DailyFocusEntry is today's summed focus time for one task.
type DailyFocusEntry struct {
	Task    string `json:"task"`
	Seconds int    `json:"seconds"`
}

// WeeklyFocusEntry is one calendar day of the trailing 7-day window.
type WeeklyFocusEntry struct {
	DateID       string
	TotalSeconds int
	WeekdayLabel string
}

// RawWeeklyEntry is a weekly row as the backend reports it.
type RawWeeklyEntry struct {
	DateID       string `json:"_id"`
	TotalSeconds int    `json:"total_Time"`
}

// Summary is the combined analytics payload returned by one backend read.
type Summary struct {
	Today []DailyFocusEntry `json:"ans"`
	Week  []RawWeeklyEntry  `json:"ans2"`
}

// TimerState is a read-only view of the engine.
type TimerState struct {
	State            State
	TargetSeconds    int
	RemainingSeconds int
	Running          bool
	FocusLabel       string
}
