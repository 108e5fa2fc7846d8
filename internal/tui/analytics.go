package tui

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/deepwork/internal/focus"
)

const labelRunes = 10

var weekBarColor = colorSecondary

// ColorFunc picks a display colour for a task.
type ColorFunc func(task string) lipgloss.Color

// RandomColor is the default ColorFunc.
func RandomColor(string) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06X", rand.IntN(0x1000000)))
}

// analyticsModel renders today's per-task focus and the last 7 days.
type analyticsModel struct {
	width  int
	height int

	colorFor ColorFunc
	now      func() time.Time

	snap   focus.Snapshot
	colors map[string]lipgloss.Color

	today barchart.Model
	week  barchart.Model
}

func newAnalyticsModel(colorFor ColorFunc, now func() time.Time) analyticsModel {
	if colorFor == nil {
		colorFor = RandomColor
	}
	if now == nil {
		now = time.Now
	}
	return analyticsModel{
		colorFor: colorFor,
		now:      now,
		colors:   map[string]lipgloss.Color{},
		today:    barchart.New(40, 10),
		week:     barchart.New(40, 10),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildCharts()
}

// setData replaces both sequences and recolours the tasks.
func (a *analyticsModel) setData(snap focus.Snapshot) {
	a.snap = snap
	a.colors = make(map[string]lipgloss.Color, len(snap.Today))
	for _, e := range snap.Today {
		if _, ok := a.colors[e.Task]; !ok {
			a.colors[e.Task] = a.colorFor(e.Task)
		}
	}
	a.buildCharts()
}

func (a *analyticsModel) chartSize() (int, int) {
	w := a.width - 8
	if w < 20 {
		w = 20
	}
	h := 10
	if a.height > 36 {
		h = 14
	}
	return w, h
}

func (a *analyticsModel) buildCharts() {
	w, h := a.chartSize()

	a.today = barchart.New(w, h)
	var bars []barchart.BarData
	for _, e := range a.snap.Today {
		bars = append(bars, barchart.BarData{
			Label: truncate(e.Task, labelRunes),
			Values: []barchart.BarValue{{
				Name:  e.Task,
				Value: float64(focus.WholeMinutes(e.Seconds)),
				Style: lipgloss.NewStyle().Foreground(a.colors[e.Task]),
			}},
		})
	}
	if len(bars) > 0 {
		a.today.PushAll(bars)
		a.today.Draw()
	}

	a.week = barchart.New(w, h)
	days := weekBuckets(a.snap.Week, a.now())
	bars = bars[:0]
	for _, d := range days {
		bars = append(bars, barchart.BarData{
			Label: d.label,
			Values: []barchart.BarValue{{
				Name:  d.label,
				Value: float64(focus.WholeMinutes(d.seconds)),
				Style: lipgloss.NewStyle().Foreground(weekBarColor),
			}},
		})
	}
	if len(a.snap.Week) > 0 {
		a.week.PushAll(bars)
		a.week.Draw()
	}
}

type dayBucket struct {
	dateID  string
	label   string
	seconds int
}

// weekBuckets lays the weekly entries onto the 7 UTC days ending today, so
// days without sessions still get a (zero) bar. Entries outside that window
// (clock skew around midnight) keep their own bar, in date order.
func weekBuckets(entries []focus.WeeklyFocusEntry, now time.Time) []dayBucket {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var buckets []dayBucket
	index := make(map[string]int, 7+len(entries))
	for d := today.AddDate(0, 0, -6); !d.After(today); d = d.AddDate(0, 0, 1) {
		id := d.Format(focus.DateIDLayout)
		index[id] = len(buckets)
		buckets = append(buckets, dayBucket{dateID: id, label: focus.WeekdayNames[d.Weekday()]})
	}

	for _, e := range entries {
		id, label := e.DateID, e.WeekdayLabel
		if day, err := focus.ParseDateID(e.DateID); err == nil {
			id = day.Format(focus.DateIDLayout)
			label = focus.WeekdayNames[day.Weekday()]
		}
		if i, ok := index[id]; ok {
			buckets[i].seconds += e.TotalSeconds
			continue
		}
		index[id] = len(buckets)
		buckets = append(buckets, dayBucket{dateID: id, label: label, seconds: e.TotalSeconds})
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].dateID < buckets[j].dateID })
	return buckets
}

func (a analyticsModel) view() string {
	w := a.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(a.renderToday()),
		panelStyle.Width(w).Render(a.renderWeek()),
	)
}

func (a analyticsModel) renderToday() string {
	title := titleStyle.Render("Today Focus Analytics")
	if len(a.snap.Today) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No tasks completed yet. Start a Pomodoro!"),
		)
	}

	total := 0
	for _, e := range a.snap.Today {
		total += e.Seconds
	}
	header := fmt.Sprintf("%s  %s", title, highlightStyle.Render(focus.FormatMinutes(total)))

	return lipgloss.JoinVertical(lipgloss.Left,
		header, "", a.today.View(), "", a.renderLegend(total),
	)
}

// renderLegend lists each task with its share of today's total.
func (a analyticsModel) renderLegend(total int) string {
	var rows []string
	for _, e := range a.snap.Today {
		dot := lipgloss.NewStyle().Foreground(a.colors[e.Task]).Render("●")
		share := 0.0
		if total > 0 {
			share = float64(e.Seconds) * 100 / float64(total)
		}
		rows = append(rows, fmt.Sprintf("  %s %-10s %8s  %5.1f%%",
			dot, truncate(e.Task, labelRunes), focus.FormatMinutes(e.Seconds), share))
	}
	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderWeek() string {
	title := titleStyle.Render("Last 7 Days Focus Analytics")
	if len(a.snap.Week) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No focus sessions in the last 7 days."),
		)
	}

	var axis []string
	for _, d := range weekBuckets(a.snap.Week, a.now()) {
		axis = append(axis, fmt.Sprintf("%s %dm", d.label, focus.WholeMinutes(d.seconds)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title, "", a.week.View(), "", mutedStyle.Render("  "+strings.Join(axis, "  ")),
	)
}
