package focus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// DateIDLayout is the layout of a normalised weekly date id.
const DateIDLayout = "2006-01-02"

// WeekdayNames indexes weekday labels by time.Weekday.
var WeekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// SummaryReader returns today's and the trailing week's focus totals in one call.
type SummaryReader interface {
	FocusSummary(ctx context.Context) (Summary, error)
}

// Snapshot holds both analytics views.
type Snapshot struct {
	Today []DailyFocusEntry
	Week  []WeeklyFocusEntry
}

// Aggregator fetches focus analytics and keeps the last good snapshot.
type Aggregator struct {
	remote  SummaryReader
	notify  Notifier
	log     *slog.Logger
	current Snapshot
	loaded  bool
}

func NewAggregator(remote SummaryReader, notify Notifier, log *slog.Logger) *Aggregator {
	if notify == nil {
		notify = discardNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{remote: remote, notify: notify, log: log}
}

// FetchToday returns one entry per task for the current day.
func (a *Aggregator) FetchToday(ctx context.Context) ([]DailyFocusEntry, error) {
	s, err := a.remote.FocusSummary(ctx)
	if err != nil {
		return nil, &RemoteReadError{Op: "fetch today focus", Err: err}
	}
	return todayEntries(s.Today), nil
}

// FetchWeek returns one labelled entry per day of the trailing week.
func (a *Aggregator) FetchWeek(ctx context.Context) ([]WeeklyFocusEntry, error) {
	s, err := a.remote.FocusSummary(ctx)
	if err != nil {
		return nil, &RemoteReadError{Op: "fetch week focus", Err: err}
	}
	return a.weekEntries(s.Week), nil
}

// Fetch reads both views with a single backend call. It does not modify the
// aggregator, so it may run off the event loop.
func (a *Aggregator) Fetch(ctx context.Context) (Snapshot, error) {
	s, err := a.remote.FocusSummary(ctx)
	if err != nil {
		return Snapshot{}, &RemoteReadError{Op: "fetch focus analytics", Err: err}
	}
	return Snapshot{Today: todayEntries(s.Today), Week: a.weekEntries(s.Week)}, nil
}

// Apply replaces the current snapshot with snap, or keeps it when err is set.
func (a *Aggregator) Apply(snap Snapshot, err error) error {
	if err != nil {
		a.log.Warn("Focus analytics unavailable", "error", err)
		a.notify.Notify(NoticeError, "Failed to load focus analytics")
		return err
	}
	a.current = snap
	a.loaded = true
	return nil
}

// Refresh re-fetches and replaces both views.
func (a *Aggregator) Refresh(ctx context.Context) error {
	snap, err := a.Fetch(ctx)
	return a.Apply(snap, err)
}

// Current returns the last successfully fetched snapshot.
func (a *Aggregator) Current() Snapshot { return a.current }

// Loaded reports whether any fetch has succeeded yet.
func (a *Aggregator) Loaded() bool { return a.loaded }

func todayEntries(rows []DailyFocusEntry) []DailyFocusEntry {
	if len(rows) == 0 {
		return []DailyFocusEntry{}
	}
	out := make([]DailyFocusEntry, len(rows))
	copy(out, rows)
	return out
}

// weekEntries labels each row and rewrites its id to the UTC calendar day
// (YYYY-MM-DD). Rows falling on the same day are summed.
func (a *Aggregator) weekEntries(rows []RawWeeklyEntry) []WeeklyFocusEntry {
	out := make([]WeeklyFocusEntry, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, r := range rows {
		day, err := ParseDateID(r.DateID)
		if err != nil {
			a.log.Warn("Dropping weekly focus row", "date_id", r.DateID, "error", err)
			continue
		}
		id := day.Format(DateIDLayout)
		if i, ok := index[id]; ok {
			out[i].TotalSeconds += r.TotalSeconds
			continue
		}
		index[id] = len(out)
		out = append(out, WeeklyFocusEntry{
			DateID:       id,
			TotalSeconds: r.TotalSeconds,
			WeekdayLabel: WeekdayNames[day.Weekday()],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateID < out[j].DateID })
	return out
}

// ParseDateID reads a backend date id as a UTC calendar day. Both plain dates
// and RFC 3339 timestamps are accepted; timestamps are converted to UTC first.
func ParseDateID(dateID string) (time.Time, error) {
	if t, err := time.Parse(DateIDLayout, dateID); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, dateID)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date id %q: %w", dateID, err)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// WeekdayLabel returns Sun..Sat for a backend date id.
func WeekdayLabel(dateID string) (string, error) {
	t, err := ParseDateID(dateID)
	if err != nil {
		return "", err
	}
	return WeekdayNames[t.Weekday()], nil
}
