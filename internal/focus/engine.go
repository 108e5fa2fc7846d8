package focus

import "strings"

// DefaultSeconds is the countdown length on mount and after a logged session.
const DefaultSeconds = 2 * 60

// Presets are the selectable countdown lengths in minutes.
var Presets = []int{2, 5, 25, 50}

// State is the countdown engine state.
type State int

const (
	Idle State = iota
	Running
	Expired
)

var stateNames = map[State]string{
	Idle:    "IDLE",
	Running: "RUNNING",
	Expired: "EXPIRED",
}

func (s State) String() string { return stateNames[s] }

// Handle identifies one armed tick source. The zero Handle is never live.
type Handle uint64

// TickResult describes what a tick did.
type TickResult int

const (
	// TickStale means the tick came from a cancelled or superseded source.
	TickStale TickResult = iota
	TickCounted
	TickExpired
)

// Engine is the countdown state machine. It is not safe for concurrent use;
// every call is expected from the single event loop that owns it.
type Engine struct {
	defaultSeconds int

	state     State
	target    int
	remaining int
	label     string

	live Handle
	last Handle

	pending *Session
	claimed bool
}

// NewEngine returns an idle engine at defaultSeconds (DefaultSeconds when <= 0).
func NewEngine(defaultSeconds int) *Engine {
	if defaultSeconds <= 0 {
		defaultSeconds = DefaultSeconds
	}
	return &Engine{
		defaultSeconds: defaultSeconds,
		target:         defaultSeconds,
		remaining:      defaultSeconds,
	}
}

func (e *Engine) State() State { return e.state }
func (e *Engine) Label() string { return e.label }
func (e *Engine) Remaining() int { return e.remaining }
func (e *Engine) Target() int { return e.target }
func (e *Engine) DefaultSeconds() int { return e.defaultSeconds }
func (e *Engine) Live() Handle { return e.live }
func (e *Engine) HasPendingLog() bool { return e.pending != nil }

func (e *Engine) Snapshot() TimerState {
	return TimerState{
		State:            e.state,
		TargetSeconds:    e.target,
		RemainingSeconds: e.remaining,
		Running:          e.state == Running,
		FocusLabel:       e.label,
	}
}

// SetLabel sets the focus description. Ignored while a session is being logged.
func (e *Engine) SetLabel(label string) {
	if e.state == Expired {
		return
	}
	e.label = label
}

// SelectPreset resets target and remaining to minutes and stops the countdown.
func (e *Engine) SelectPreset(minutes int) {
	if minutes <= 0 || e.state == Expired {
		return
	}
	e.cancel()
	e.state = Idle
	e.target = minutes * 60
	e.remaining = e.target
}

// Start moves Idle to Running and arms a fresh tick source.
func (e *Engine) Start() (Handle, error) {
	if e.state != Idle {
		return e.live, nil
	}
	if strings.TrimSpace(e.label) == "" {
		return 0, &ValidationError{Field: "focus label", Message: "please enter a description before starting the timer"}
	}
	e.state = Running
	return e.arm(), nil
}

// Pause moves Running to Idle, keeping the remaining time.
func (e *Engine) Pause() {
	if e.state != Running {
		return
	}
	e.cancel()
	e.state = Idle
}

// Toggle starts an idle countdown or pauses a running one.
func (e *Engine) Toggle() (Handle, error) {
	if e.state == Running {
		e.Pause()
		return 0, nil
	}
	return e.Start()
}

// Tick applies one second from handle h.
func (e *Engine) Tick(h Handle) TickResult {
	if h == 0 || h != e.live || e.state != Running {
		return TickStale
	}
	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining > 0 {
		return TickCounted
	}
	e.expire()
	return TickExpired
}

// ClaimSession hands out the session recorded by the last expiry, once.
func (e *Engine) ClaimSession() (Session, bool) {
	if e.state != Expired || e.pending == nil || e.claimed {
		return Session{}, false
	}
	e.claimed = true
	return *e.pending, true
}

// SessionLogged finishes a claimed session. On success the engine returns to
// its default duration with an empty label; on failure the label is kept and
// the countdown is rewound to its target.
func (e *Engine) SessionLogged(err error) {
	if e.state != Expired || !e.claimed {
		return
	}
	e.pending = nil
	e.claimed = false
	e.state = Idle
	if err != nil {
		e.remaining = e.target
		return
	}
	e.label = ""
	e.target = e.defaultSeconds
	e.remaining = e.defaultSeconds
}

// Reset stops the countdown in any state and rewinds it to the target.
// A session waiting to be logged is dropped.
func (e *Engine) Reset() {
	e.cancel()
	e.pending = nil
	e.claimed = false
	e.state = Idle
	e.remaining = e.target
}

// Close releases the tick source, e.g. when the view goes away.
func (e *Engine) Close() {
	e.cancel()
	if e.state == Running {
		e.state = Idle
	}
}

func (e *Engine) expire() {
	e.cancel()
	e.state = Expired
	e.remaining = 0
	e.pending = &Session{Task: e.label, Seconds: e.target}
	e.claimed = false
}

// arm supersedes any live handle with a new one.
func (e *Engine) arm() Handle {
	e.cancel()
	e.last++
	e.live = e.last
	return e.live
}

func (e *Engine) cancel() {
	e.live = 0
}
