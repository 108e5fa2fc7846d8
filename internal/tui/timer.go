package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/deepwork/internal/focus"
)

// timerModel is the Deep Work countdown view.
type timerModel struct {
	engine  *focus.Engine
	logger  *focus.SessionLogger
	notices *noticeBoard
	timeout time.Duration
	width   int
	height  int

	presets []int
	preset  int // minutes of the selected preset

	// logging is set while a session write is in flight.
	logging  bool
	inputErr string

	formActive bool
	form       *huh.Form
	formLabel  *string
}

func newTimerModel(engine *focus.Engine, logger *focus.SessionLogger, notices *noticeBoard, presets []int, timeout time.Duration) timerModel {
	label := ""
	if len(presets) == 0 {
		presets = focus.Presets
	}
	return timerModel{
		engine:    engine,
		logger:    logger,
		notices:   notices,
		timeout:   timeout,
		presets:   presets,
		preset:    engine.Target() / 60,
		formLabel: &label,
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		switch t.engine.Tick(msg.handle) {
		case focus.TickCounted:
			return t, tickCmd(msg.handle)
		case focus.TickExpired:
			return t.beginLog()
		}
		return t, nil

	case sessionLoggedMsg:
		t.logging = false
		if t.logger.Finish(msg.err) {
			t.preset = t.engine.Target() / 60
			return t, func() tea.Msg { return refreshAnalyticsMsg{} }
		}
		return t, nil

	case tea.KeyMsg:
		if t.logging {
			return t, nil
		}
		switch {
		case key.Matches(msg, keys.Toggle):
			return t.toggle()
		case key.Matches(msg, keys.Reset):
			t.engine.Reset()
			t.inputErr = ""
			return t, nil
		case key.Matches(msg, keys.Label):
			return t.showLabelForm()
		case key.Matches(msg, keys.Preset):
			idx, err := strconv.Atoi(msg.String())
			if err == nil && idx >= 1 && idx <= len(t.presets) {
				t.preset = t.presets[idx-1]
				t.engine.SelectPreset(t.preset)
			}
			return t, nil
		}
	}
	return t, nil
}

// refreshAnalyticsMsg asks the app to re-fetch both analytics views.
type refreshAnalyticsMsg struct{}

func (t timerModel) toggle() (timerModel, tea.Cmd) {
	h, err := t.engine.Toggle()
	if err != nil {
		var verr *focus.ValidationError
		if errors.As(err, &verr) {
			t.inputErr = "Please enter a description before starting the timer."
			t.notices.Notify(focus.NoticeError, t.inputErr)
			return t, nil
		}
		t.notices.Notify(focus.NoticeError, err.Error())
		return t, nil
	}
	t.inputErr = ""
	if h == 0 {
		return t, nil
	}
	return t, tickCmd(h)
}

// beginLog claims the expired session and writes it off the event loop.
func (t timerModel) beginLog() (timerModel, tea.Cmd) {
	s, ok := t.logger.Begin()
	if !ok {
		return t, nil
	}
	t.logging = true
	logger, timeout := t.logger, t.timeout
	return t, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionLoggedMsg{err: logger.Send(ctx, s)}
	}
}

func (t timerModel) showLabelForm() (timerModel, tea.Cmd) {
	*t.formLabel = t.engine.Label()

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What will you focus on?").
				CharLimit(200).
				Value(t.formLabel),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t timerModel) updateForm(msg tea.Msg) (timerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	// The countdown keeps running while the form is open.
	switch msg.(type) {
	case tickMsg, sessionLoggedMsg:
		form := t.form
		t.formActive = false
		next, cmd := t.update(msg)
		next.formActive = true
		next.form = form
		return next, cmd
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		t.engine.SetLabel(strings.TrimSpace(*t.formLabel))
		t.inputErr = ""
		return t, nil
	}

	return t, cmd
}

func (t timerModel) view() string {
	w := t.width - 4

	title := titleStyle.Render("Deep Work")
	subtitle := subtitleStyle.Render("Focused sessions to boost productivity")

	if t.formActive && t.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Center, title, subtitle, "", t.form.View()),
		)
	}

	state := t.engine.Snapshot()

	label := mutedStyle.Render("What will you focus on?  (n)")
	if state.FocusLabel != "" {
		label = highlightStyle.Render(state.FocusLabel)
	}

	timeStr := focus.FormatMinutesSeconds(state.RemainingSeconds)
	var timeDisplay, indicator string
	switch {
	case t.logging || state.State == focus.Expired:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(timeStr)
		indicator = successStyle.Render("●  LOGGING SESSION")
	case state.Running:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  FOCUSING")
	case state.RemainingSeconds < state.TargetSeconds:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		timeDisplay = timerStyle.Width(w - 6).Render(timeStr)
		indicator = mutedStyle.Render("■  READY")
	}

	rows := []string{title, subtitle, "", label, "", timeDisplay, indicator}
	if t.inputErr != "" {
		rows = append(rows, errorStyle.Render(t.inputErr))
	}
	rows = append(rows, "", t.renderPresets(), "")

	var controls string
	switch {
	case t.logging:
		controls = mutedStyle.Render("saving...")
	case state.Running:
		controls = mutedStyle.Render("space: pause  r: reset  n: change focus")
	default:
		controls = mutedStyle.Render("space: start  r: reset  n: set focus  1-4: preset")
	}
	rows = append(rows, controls)

	style := panelStyle
	if state.Running {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (t timerModel) renderPresets() string {
	var parts []string
	for i, m := range t.presets {
		text := fmt.Sprintf("%d: %d min", i+1, m)
		if m == t.preset {
			parts = append(parts, activeTabStyle.Render(text))
		} else {
			parts = append(parts, inactiveTabStyle.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}
