package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/deepwork/internal/focus"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewAnalytics
)

var viewNames = []string{"Deep Work", "Analytics"}

// --- Messages ---

// tickMsg is one second from the tick source identified by handle.
type tickMsg struct {
	handle focus.Handle
}

type sessionLoggedMsg struct {
	err error
}

type analyticsMsg struct {
	snap focus.Snapshot
	err  error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// tickCmd schedules the next second of tick source h.
func tickCmd(h focus.Handle) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{handle: h}
	})
}

// --- Helpers ---

// truncate shortens s to n runes, as chart labels are.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
