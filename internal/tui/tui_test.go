package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/deepwork/internal/focus"
)

type fakeRemote struct {
	sessions   []focus.Session
	summary    focus.Summary
	createErr  error
	summaryErr error
}

func (r *fakeRemote) CreateSession(_ context.Context, s focus.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *fakeRemote) FocusSummary(context.Context) (focus.Summary, error) {
	if r.summaryErr != nil {
		return focus.Summary{}, r.summaryErr
	}
	return r.summary, nil
}

var testNow = time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC) // a Wednesday

func newTestApp(t *testing.T, r *fakeRemote, defaultSeconds int) App {
	t.Helper()
	return NewApp(r, Options{
		DefaultSeconds: defaultSeconds,
		Timeout:        time.Second,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Colors:         func(string) lipgloss.Color { return lipgloss.Color("#123456") },
		Now:            func() time.Time { return testNow },
		ExportDir:      t.TempDir(),
	})
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next, cmd
}

func press(t *testing.T, a App, k string) (App, tea.Cmd) {
	t.Helper()
	switch k {
	case "esc":
		return step(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return step(t, a, tea.KeyMsg{Type: tea.KeyTab})
	}
	return step(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// ============================================================
// Timer view
// ============================================================

func TestTimerStartRequiresLabel(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)

	app, cmd := press(t, app, "s")
	if cmd != nil {
		t.Fatal("no tick should be scheduled without a label")
	}
	if app.engine.State() != focus.Idle {
		t.Fatalf("state = %v, want IDLE", app.engine.State())
	}
	if app.timer.inputErr == "" {
		t.Fatal("expected an inline validation message")
	}
	if app.notices.kind != focus.NoticeError {
		t.Fatal("expected an error notice")
	}
}

func TestTimerStartPause(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.engine.SetLabel("Write docs")

	app, cmd := press(t, app, "s")
	if cmd == nil {
		t.Fatal("start should schedule a tick")
	}
	if app.engine.State() != focus.Running {
		t.Fatalf("state = %v, want RUNNING", app.engine.State())
	}

	h := app.engine.Live()
	app, _ = step(t, app, tickMsg{handle: h})
	if app.engine.Remaining() != 119 {
		t.Fatalf("remaining = %d, want 119", app.engine.Remaining())
	}

	app, cmd = press(t, app, "s")
	if cmd != nil {
		t.Fatal("pause should not schedule a tick")
	}
	if app.engine.State() != focus.Idle || app.engine.Remaining() != 119 {
		t.Fatalf("pause lost progress: %v %d", app.engine.State(), app.engine.Remaining())
	}

	// The paused source must not count any more.
	app, cmd = step(t, app, tickMsg{handle: h})
	if cmd != nil || app.engine.Remaining() != 119 {
		t.Fatal("stale tick was honoured")
	}
}

func TestTimerResetDropsTicks(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.engine.SetLabel("Read")
	app, _ = press(t, app, "s")
	h := app.engine.Live()
	app, _ = step(t, app, tickMsg{handle: h})

	app, _ = press(t, app, "r")
	if app.engine.Remaining() != 120 || app.engine.State() != focus.Idle {
		t.Fatal("reset should rewind to the target")
	}
	app, cmd := step(t, app, tickMsg{handle: h})
	if cmd != nil || app.engine.Remaining() != 120 {
		t.Fatal("tick after reset changed the countdown")
	}
}

func TestTimerPresetKeys(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)

	app, _ = press(t, app, "3")
	if app.engine.Target() != 25*60 || app.engine.Remaining() != 25*60 {
		t.Fatalf("target = %d, want %d", app.engine.Target(), 25*60)
	}
	if app.timer.preset != 25 {
		t.Fatalf("preset = %d, want 25", app.timer.preset)
	}

	// Out of range keys are ignored.
	app, _ = press(t, app, "9")
	if app.engine.Target() != 25*60 {
		t.Fatal("unknown preset changed the target")
	}
}

func TestTimerExpiryLogsOnce(t *testing.T) {
	r := &fakeRemote{summary: focus.Summary{
		Today: []focus.DailyFocusEntry{{Task: "Write docs", Seconds: 2}},
		Week:  []focus.RawWeeklyEntry{{DateID: "2024-06-05", TotalSeconds: 2}},
	}}
	app := newTestApp(t, r, 2)
	app.engine.SetLabel("Write docs")
	app, _ = press(t, app, "s")
	h := app.engine.Live()

	app, cmd := step(t, app, tickMsg{handle: h})
	if cmd == nil {
		t.Fatal("counted tick should re-arm")
	}
	app, cmd = step(t, app, tickMsg{handle: h})
	if cmd == nil {
		t.Fatal("expiry should start the session write")
	}
	if !app.timer.logging {
		t.Fatal("timer should be logging")
	}

	// A late tick from the same source does nothing.
	app, extra := step(t, app, tickMsg{handle: h})
	if extra != nil {
		t.Fatal("tick after expiry scheduled work")
	}

	// Keys are ignored while the write is in flight.
	app, _ = press(t, app, "r")
	if app.engine.State() != focus.Expired {
		t.Fatalf("state = %v, want EXPIRED", app.engine.State())
	}

	msg := cmd()
	logged, ok := msg.(sessionLoggedMsg)
	if !ok {
		t.Fatalf("got %T, want sessionLoggedMsg", msg)
	}
	app, cmd = step(t, app, logged)
	if len(r.sessions) != 1 {
		t.Fatalf("logged %d sessions, want 1", len(r.sessions))
	}
	if r.sessions[0] != (focus.Session{Task: "Write docs", Seconds: 2}) {
		t.Fatalf("logged %+v", r.sessions[0])
	}
	if app.engine.Label() != "" || app.engine.Remaining() != 2 || app.engine.State() != focus.Idle {
		t.Fatal("engine not reset after a logged session")
	}
	if app.notices.text != "Session logged successfully!" {
		t.Fatalf("notice = %q", app.notices.text)
	}

	if cmd == nil {
		t.Fatal("a logged session should refresh analytics")
	}
	app, cmd = step(t, app, cmd())
	if cmd == nil {
		t.Fatal("refresh should fetch analytics")
	}
	app, _ = step(t, app, cmd())
	if len(app.analytics.snap.Today) != 1 || len(app.analytics.snap.Week) != 1 {
		t.Fatalf("analytics not refreshed: %+v", app.analytics.snap)
	}
	if app.analytics.snap.Week[0].WeekdayLabel != "Wed" {
		t.Fatalf("weekday = %q, want Wed", app.analytics.snap.Week[0].WeekdayLabel)
	}
}

func TestTimerLogFailureKeepsLabel(t *testing.T) {
	r := &fakeRemote{createErr: errors.New("backend down")}
	app := newTestApp(t, r, 1)
	app.engine.SetLabel("Deep read")
	app, _ = press(t, app, "s")

	app, cmd := step(t, app, tickMsg{handle: app.engine.Live()})
	if cmd == nil {
		t.Fatal("expiry should start the session write")
	}
	app, cmd = step(t, app, cmd())
	if cmd != nil {
		t.Fatal("failed log should not refresh analytics")
	}
	if app.engine.State() != focus.Idle || app.engine.Label() != "Deep read" || app.engine.Remaining() != 1 {
		t.Fatal("failed log should rewind and keep the label")
	}
	if app.notices.kind != focus.NoticeError || app.notices.text != "Failed to log session" {
		t.Fatalf("notice = %v %q", app.notices.kind, app.notices.text)
	}
	if app.timer.logging {
		t.Fatal("logging flag should be cleared")
	}
}

func TestTimerLabelFormKeepsCounting(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.engine.SetLabel("Plan")
	app, _ = press(t, app, "s")

	app, _ = press(t, app, "n")
	if !app.isFormActive() {
		t.Fatal("label form should be active")
	}

	app, cmd := step(t, app, tickMsg{handle: app.engine.Live()})
	if cmd == nil || app.engine.Remaining() != 119 {
		t.Fatal("countdown should keep running while the form is open")
	}
	if !app.isFormActive() {
		t.Fatal("tick closed the form")
	}

	app, _ = press(t, app, "esc")
	if app.isFormActive() {
		t.Fatal("esc should close the form")
	}
	if app.engine.Label() != "Plan" {
		t.Fatal("cancelled form changed the label")
	}
}

// ============================================================
// Analytics view
// ============================================================

func TestWeekBucketsFillMissingDays(t *testing.T) {
	entries := []focus.WeeklyFocusEntry{
		{DateID: "2024-06-03", TotalSeconds: 600, WeekdayLabel: "Mon"},
		{DateID: "2024-06-05", TotalSeconds: 120, WeekdayLabel: "Wed"},
	}
	days := weekBuckets(entries, testNow)

	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	if days[0].dateID != "2024-05-30" || days[0].label != "Thu" {
		t.Fatalf("first day = %+v", days[0])
	}
	if days[6].dateID != "2024-06-05" || days[6].seconds != 120 {
		t.Fatalf("last day = %+v", days[6])
	}
	if days[4].label != "Mon" || days[4].seconds != 600 {
		t.Fatalf("monday = %+v", days[4])
	}
	if days[1].seconds != 0 {
		t.Fatal("missing days should be zero")
	}
}

func TestWeekBucketsTimestampIDs(t *testing.T) {
	entries := []focus.WeeklyFocusEntry{
		{DateID: "2024-06-03T00:00:00.000Z", TotalSeconds: 600, WeekdayLabel: "Mon"},
	}
	days := weekBuckets(entries, testNow)

	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	if days[4].dateID != "2024-06-03" || days[4].seconds != 600 {
		t.Fatalf("monday = %+v, want 600 seconds", days[4])
	}
}

func TestWeekBucketsKeepOutOfWindowDays(t *testing.T) {
	entries := []focus.WeeklyFocusEntry{
		{DateID: "2024-05-29", TotalSeconds: 300, WeekdayLabel: "Wed"},
		{DateID: "2024-06-06", TotalSeconds: 60, WeekdayLabel: "Thu"},
	}
	days := weekBuckets(entries, testNow)

	if len(days) != 9 {
		t.Fatalf("got %d days, want 9", len(days))
	}
	if days[0].dateID != "2024-05-29" || days[0].seconds != 300 {
		t.Fatalf("first day = %+v", days[0])
	}
	if days[8].dateID != "2024-06-06" || days[8].label != "Thu" || days[8].seconds != 60 {
		t.Fatalf("last day = %+v", days[8])
	}
}

func TestAnalyticsFromTimestampPayload(t *testing.T) {
	r := &fakeRemote{summary: focus.Summary{
		Week: []focus.RawWeeklyEntry{{DateID: "2024-06-03T00:00:00.000Z", TotalSeconds: 600}},
	}}
	app := newTestApp(t, r, 120)

	app, _ = step(t, app, app.fetchAnalytics()())
	days := weekBuckets(app.analytics.snap.Week, testNow)
	if days[4].label != "Mon" || days[4].seconds != 600 {
		t.Fatalf("monday = %+v, want 600 seconds", days[4])
	}
}

func TestAnalyticsColorsAssignedPerRefresh(t *testing.T) {
	calls := 0
	a := newAnalyticsModel(func(string) lipgloss.Color {
		calls++
		return lipgloss.Color("#ABCDEF")
	}, func() time.Time { return testNow })
	a.setSize(100, 40)

	snap := focus.Snapshot{Today: []focus.DailyFocusEntry{
		{Task: "Write", Seconds: 600},
		{Task: "Read", Seconds: 300},
	}}
	a.setData(snap)
	if calls != 2 {
		t.Fatalf("colour func called %d times, want 2", calls)
	}
	_ = a.view()
	_ = a.view()
	if calls != 2 {
		t.Fatal("rendering should not pick new colours")
	}
	if a.colors["Read"] != lipgloss.Color("#ABCDEF") {
		t.Fatal("colour not recorded")
	}
}

func TestAnalyticsEmptyState(t *testing.T) {
	a := newAnalyticsModel(nil, func() time.Time { return testNow })
	a.setSize(100, 40)

	out := a.view()
	if !strings.Contains(out, "No tasks completed yet. Start a Pomodoro!") {
		t.Fatal("missing today empty state")
	}
	if !strings.Contains(out, "No focus sessions in the last 7 days.") {
		t.Fatal("missing week empty state")
	}
}

func TestAnalyticsLegend(t *testing.T) {
	a := newAnalyticsModel(nil, func() time.Time { return testNow })
	a.setSize(100, 40)
	a.setData(focus.Snapshot{Today: []focus.DailyFocusEntry{
		{Task: "A very long task name", Seconds: 1800},
		{Task: "Short", Seconds: 600},
	}})

	legend := a.renderLegend(2400)
	if !strings.Contains(legend, "A very lon") || strings.Contains(legend, "A very long") {
		t.Fatal("legend labels should be truncated to 10 runes")
	}
	if !strings.Contains(legend, "30 min") || !strings.Contains(legend, "75.0%") {
		t.Fatalf("legend missing minutes or share: %q", legend)
	}
}

func TestAnalyticsFailureKeepsPrevious(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	good := focus.Snapshot{Today: []focus.DailyFocusEntry{{Task: "Write", Seconds: 60}}}

	app, _ = step(t, app, analyticsMsg{snap: good})
	app, _ = step(t, app, analyticsMsg{err: errors.New("timeout")})

	if len(app.analytics.snap.Today) != 1 || len(app.agg.Current().Today) != 1 {
		t.Fatal("failed refresh should keep the previous analytics")
	}
	if app.notices.kind != focus.NoticeError {
		t.Fatal("expected an error notice")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer label", 10, "much longe"},
		{"日本語のタスク名です長い", 5, "日本語のタ"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)

	if app.activeView != viewTimer {
		t.Fatal("default view should be the timer")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("no overlay should be open initially")
	}
	if app.engine.Remaining() != 120 {
		t.Fatalf("remaining = %d, want 120", app.engine.Remaining())
	}
}

func TestAppInitFetchesAnalytics(t *testing.T) {
	r := &fakeRemote{summary: focus.Summary{Today: []focus.DailyFocusEntry{{Task: "Write", Seconds: 90}}}}
	app := newTestApp(t, r, 120)

	cmd := app.Init()
	if cmd == nil {
		t.Fatal("Init should fetch analytics")
	}
	msg, ok := cmd().(analyticsMsg)
	if !ok || msg.err != nil {
		t.Fatalf("unexpected init result %+v", msg)
	}
	app, _ = step(t, app, msg)
	if !app.agg.Loaded() || len(app.analytics.snap.Today) != 1 {
		t.Fatal("analytics not applied")
	}
}

func TestAppTabSwitchKeepsTicking(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.engine.SetLabel("Write")
	app, _ = press(t, app, "s")

	app, _ = press(t, app, "tab")
	if app.activeView != viewAnalytics {
		t.Fatal("tab should switch to analytics")
	}
	app, _ = step(t, app, tickMsg{handle: app.engine.Live()})
	if app.engine.Remaining() != 119 {
		t.Fatal("ticks must reach the timer on other tabs")
	}

	// Timer keys do nothing on the analytics tab.
	app, _ = press(t, app, "r")
	if app.engine.Remaining() != 119 {
		t.Fatal("reset leaked into the analytics tab")
	}

	app, _ = press(t, app, "tab")
	if app.activeView != viewTimer {
		t.Fatal("tab should wrap back to the timer")
	}
}

func TestAppQuitClosesEngine(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.engine.SetLabel("Write")
	app, _ = press(t, app, "s")

	app, cmd := press(t, app, "q")
	if cmd == nil {
		t.Fatal("quit should return tea.Quit")
	}
	if app.engine.Live() != 0 || app.engine.State() != focus.Idle {
		t.Fatal("quit should release the tick source")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.width = 120
	app.height = 40
	app.analytics.setSize(120, 36)
	app.analytics.setData(focus.Snapshot{
		Today: []focus.DailyFocusEntry{{Task: "Write", Seconds: 600}},
		Week:  []focus.WeeklyFocusEntry{{DateID: "2024-06-04", TotalSeconds: 600, WeekdayLabel: "Tue"}},
	})

	for _, v := range []viewState{viewTimer, viewAnalytics} {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.width = 120
	app.height = 40

	app, _ = step(t, app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppKeyClearsNotice(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app.width = 120
	app.height = 40

	app, _ = step(t, app, statusMsg{text: "old news", isError: true})
	app, _ = press(t, app, "?")
	if app.notices.text != "" || strings.Contains(app.renderFooter(), "old news") {
		t.Fatal("a key press should clear the notice")
	}

	// A key that raises its own notice keeps it.
	app, _ = press(t, app, "s")
	if app.notices.kind != focus.NoticeError || app.notices.text == "" {
		t.Fatal("validation notice was cleared")
	}
}

func TestAppExport(t *testing.T) {
	app := newTestApp(t, &fakeRemote{}, 120)
	app, _ = step(t, app, analyticsMsg{snap: focus.Snapshot{
		Today: []focus.DailyFocusEntry{{Task: "Write", Seconds: 600}},
	}})

	app, _ = press(t, app, "e")
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = step(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app, cmd := step(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should export")
	}

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("export failed")
	}
	if filepath.Base(done.path) != "deepwork-export-2024-06-05.json" {
		t.Fatalf("path = %s", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatal(err)
	}

	app, _ = step(t, app, done)
	if !strings.Contains(app.notices.text, done.path) {
		t.Fatal("export notice missing path")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"timerPaused", func() string { return timerPausedStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
