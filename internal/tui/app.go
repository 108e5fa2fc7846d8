package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/deepwork/internal/export"
	"github.com/sadopc/deepwork/internal/focus"
)

// Remote is the focus-session backend the app talks to.
type Remote interface {
	focus.SessionWriter
	focus.SummaryReader
}

// Options tune the app. Zero values fall back to sensible defaults.
type Options struct {
	DefaultSeconds int
	Presets        []int
	Timeout        time.Duration
	Logger         *slog.Logger
	Colors         ColorFunc
	Now            func() time.Time
	ExportDir      string
}

// App is the root Bubble Tea model.
type App struct {
	engine  *focus.Engine
	agg     *focus.Aggregator
	notices *noticeBoard
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
	outDir  string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer     timerModel
	analytics analyticsModel

	help help.Model
}

func NewApp(remote Remote, opts Options) App {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	notices := &noticeBoard{}
	engine := focus.NewEngine(opts.DefaultSeconds)
	agg := focus.NewAggregator(remote, notices, opts.Logger)
	logger := focus.NewSessionLogger(engine, remote, agg, notices, opts.Logger)

	h := help.New()
	h.ShowAll = false

	return App{
		engine:     engine,
		agg:        agg,
		notices:    notices,
		log:        opts.Logger,
		timeout:    opts.Timeout,
		now:        opts.Now,
		outDir:     opts.ExportDir,
		activeView: viewTimer,
		timer:      newTimerModel(engine, logger, notices, opts.Presets, opts.Timeout),
		analytics:  newAnalyticsModel(opts.Colors, opts.Now),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.fetchAnalytics()
}

// fetchAnalytics reads both views off the event loop; the result comes back
// as an analyticsMsg and is applied in Update.
func (a App) fetchAnalytics() tea.Cmd {
	agg, timeout := a.agg, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := agg.Fetch(ctx)
		return analyticsMsg{snap: snap, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// A notice stays up until the next key.
		a.notices.clear()

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (the focus form) gets keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.engine.Close()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.fetchAnalytics()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	// The countdown belongs to the timer whichever tab is showing.
	case tickMsg, sessionLoggedMsg:
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case refreshAnalyticsMsg:
		return a, a.fetchAnalytics()

	case analyticsMsg:
		if err := a.agg.Apply(msg.snap, msg.err); err == nil {
			a.analytics.setData(a.agg.Current())
		}
		return a, nil

	case statusMsg:
		kind := focus.NoticeInfo
		if msg.isError {
			kind = focus.NoticeError
		}
		a.notices.Notify(kind, msg.text)
		return a, nil

	case exportDoneMsg:
		a.notices.Notify(focus.NoticeSuccess, "Exported to "+msg.path)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.activeView == viewTimer {
		a.timer, cmd = a.timer.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewTimer && a.timer.formActive
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewAnalytics:
		content = a.analytics.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("deepwork")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	// Countdown indicator, so it stays visible on the analytics tab.
	timerInfo := ""
	remaining := focus.FormatMinutesSeconds(a.engine.Remaining())
	switch {
	case a.engine.State() == focus.Running:
		timerInfo = successStyle.Render(" ● " + remaining)
	case a.engine.Remaining() < a.engine.Target():
		timerInfo = warningStyle.Render(" ⏸ " + remaining)
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + a.notices.view()

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Analytics")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the analytics currently on screen.
func (a App) doExport(format int) tea.Cmd {
	snap := a.agg.Current()
	dir := a.outDir
	dateStr := a.now().Format("2006-01-02")
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("deepwork-export-%s.csv", dateStr))
			if err := export.ToCSV(snap, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("deepwork-export-%s.json", dateStr))
			if err := export.ToJSON(snap, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
