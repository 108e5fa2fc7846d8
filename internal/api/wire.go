package api

import (
	"time"

	"github.com/sadopc/deepwork/internal/focus"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// summaryEnvelope is the body of GET /api/timer.
type summaryEnvelope struct {
	Data focus.Summary `json:"data"`
}

// createSessionRequest is the body of POST /api/timer/create.
type createSessionRequest struct {
	Task    string `json:"task" validate:"required,max=200"`
	Seconds int    `json:"seconds" validate:"required,gt=0,lte=86400"`
}

type errorBody struct {
	Error string `json:"error"`
}

// sessionRow is one entry of GET /api/timer/sessions.
type sessionRow struct {
	ID        int64     `json:"id"`
	Task      string    `json:"task"`
	Seconds   int       `json:"seconds"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionsEnvelope struct {
	Data []sessionRow `json:"data"`
}
