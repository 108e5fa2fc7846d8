package focus

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

var errBackendDown = errors.New("backend down")

type fakeRemote struct {
	created  []Session
	writeErr error

	summary   Summary
	readErr   error
	readCalls int
}

func (f *fakeRemote) CreateSession(_ context.Context, s Session) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeRemote) FocusSummary(context.Context) (Summary, error) {
	f.readCalls++
	if f.readErr != nil {
		return Summary{}, f.readErr
	}
	return f.summary, nil
}

type notice struct {
	kind    NoticeKind
	message string
}

type recorder struct{ notices []notice }

func (r *recorder) Notify(kind NoticeKind, message string) {
	r.notices = append(r.notices, notice{kind, message})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
