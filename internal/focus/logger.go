package focus

import (
	"context"
	"log/slog"
)

// SessionWriter persists completed focus sessions.
type SessionWriter interface {
	CreateSession(ctx context.Context, s Session) error
}

// SessionLogger logs each expired countdown exactly once.
type SessionLogger struct {
	engine     *Engine
	remote     SessionWriter
	notify     Notifier
	aggregator *Aggregator
	log        *slog.Logger
}

// NewSessionLogger wires a logger to the engine it drains. aggregator may be
// nil; notify and log fall back to no-op and slog.Default().
func NewSessionLogger(engine *Engine, remote SessionWriter, aggregator *Aggregator, notify Notifier, log *slog.Logger) *SessionLogger {
	if notify == nil {
		notify = discardNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionLogger{
		engine:     engine,
		remote:     remote,
		notify:     notify,
		aggregator: aggregator,
		log:        log,
	}
}

// Begin claims the session recorded by the engine's last expiry. It reports
// false when there is nothing to log or the session was already claimed.
func (l *SessionLogger) Begin() (Session, bool) {
	return l.engine.ClaimSession()
}

// Send writes s to the backend. It touches no engine state, so it may run off
// the event loop.
func (l *SessionLogger) Send(ctx context.Context, s Session) error {
	if err := l.remote.CreateSession(ctx, s); err != nil {
		return &RemoteWriteError{Session: s, Err: err}
	}
	return nil
}

// Finish applies the outcome of Send to the engine and notifies the user.
// It reports whether the analytics should be refreshed.
func (l *SessionLogger) Finish(err error) bool {
	l.engine.SessionLogged(err)
	if err != nil {
		l.log.Error("Failed to log focus session", "error", err)
		l.notify.Notify(NoticeError, "Failed to log session")
		return false
	}
	l.log.Info("Focus session logged")
	l.notify.Notify(NoticeSuccess, "Session logged successfully!")
	return true
}

// LogExpired runs Begin, Send and Finish in sequence and refreshes the
// aggregator on success. Calling it again for the same expiry does nothing.
func (l *SessionLogger) LogExpired(ctx context.Context) error {
	s, ok := l.Begin()
	if !ok {
		return nil
	}
	err := l.Send(ctx, s)
	if l.Finish(err) && l.aggregator != nil {
		_ = l.aggregator.Refresh(ctx)
	}
	return err
}
