package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sadopc/deepwork/internal/focus"
	"github.com/sadopc/deepwork/internal/store"
)

// SessionStore is the persistence the server needs.
type SessionStore interface {
	CreateSession(ctx context.Context, task string, seconds int, at time.Time) (*store.FocusSession, error)
	ListSessions(ctx context.Context, f store.SessionFilter) ([]store.FocusSession, error)
	TodayByTask(ctx context.Context, now time.Time) ([]store.TaskTotal, error)
	LastWeek(ctx context.Context, now time.Time) ([]store.DayTotal, error)
	Ping(ctx context.Context) error
}

// Server exposes focus sessions over HTTP.
type Server struct {
	store    SessionStore
	validate *validator.Validate
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time
	router   *mux.Router
}

type ServerOption func(*Server)

func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.log = l }
}

func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

func NewServer(st SessionStore, opts ...ServerOption) *Server {
	s := &Server{
		store:    st,
		validate: validator.New(),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, recoveryMiddleware(s.log), loggingMiddleware(s.log, s.metrics))

	r.HandleFunc(createSessionPath, s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc(summaryPath, s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc(sessionsPath, s.handleListSessions).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Focus API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("Shutting down focus API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Task = strings.TrimSpace(req.Task)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	fs, err := s.store.CreateSession(r.Context(), req.Task, req.Seconds, s.now())
	if err != nil {
		s.log.Error("Failed to create focus session", "error", err, "task", req.Task)
		writeError(w, http.StatusInternalServerError, "could not save session")
		return
	}
	s.metrics.sessionLogged(fs.Seconds)
	s.log.Info("Focus session created", "id", fs.ID, "task", fs.Task, "seconds", fs.Seconds)
	writeJSON(w, http.StatusCreated, struct{}{})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	today, err := s.store.TodayByTask(r.Context(), now)
	if err != nil {
		s.log.Error("Failed to load today focus", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load focus analytics")
		return
	}
	week, err := s.store.LastWeek(r.Context(), now)
	if err != nil {
		s.log.Error("Failed to load week focus", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load focus analytics")
		return
	}
	writeJSON(w, http.StatusOK, summaryEnvelope{Data: toSummary(today, week)})
}

// handleListSessions serves the raw session log, newest first. Query
// parameters: task, from and to (YYYY-MM-DD, UTC, to exclusive), limit.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.SessionFilter{Task: strings.TrimSpace(q.Get("task")), Limit: defaultListLimit}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		f.Limit = n
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		day, err := time.Parse(focus.DateIDLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, p.name+" must be a YYYY-MM-DD date")
			return
		}
		*p.dst = &day
	}

	sessions, err := s.store.ListSessions(r.Context(), f)
	if err != nil {
		s.log.Error("Failed to list focus sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}
	rows := make([]sessionRow, 0, len(sessions))
	for _, fs := range sessions {
		rows = append(rows, sessionRow{ID: fs.ID, Task: fs.Task, Seconds: fs.Seconds, CreatedAt: fs.CreatedAt})
	}
	writeJSON(w, http.StatusOK, sessionsEnvelope{Data: rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toSummary(today []store.TaskTotal, week []store.DayTotal) focus.Summary {
	sum := focus.Summary{
		Today: make([]focus.DailyFocusEntry, 0, len(today)),
		Week:  make([]focus.RawWeeklyEntry, 0, len(week)),
	}
	for _, t := range today {
		sum.Today = append(sum.Today, focus.DailyFocusEntry{Task: t.Task, Seconds: t.Seconds})
	}
	for _, d := range week {
		sum.Week = append(sum.Week, focus.RawWeeklyEntry{DateID: d.Date, TotalSeconds: d.TotalSeconds})
	}
	return sum
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gt":
			msgs = append(msgs, field+" must be greater than "+fe.Param())
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}
