package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sadopc/deepwork/internal/focus"
)

const (
	createSessionPath = "/api/timer/create"
	summaryPath       = "/api/timer"
	sessionsPath      = "/api/timer/sessions"
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the focus-session backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateSession posts one completed focus session.
func (c *Client) CreateSession(ctx context.Context, s focus.Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return c.do(ctx, http.MethodPost, createSessionPath, bytes.NewReader(body), nil)
}

// FocusSummary fetches today's per-task totals and the trailing week's per-day totals.
func (c *Client) FocusSummary(ctx context.Context) (focus.Summary, error) {
	var env summaryEnvelope
	if err := c.do(ctx, http.MethodGet, summaryPath, nil, &env); err != nil {
		return focus.Summary{}, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("Backend request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var eb errorBody
		if json.Unmarshal(msg, &eb) == nil && eb.Error != "" {
			msg = []byte(eb.Error)
		}
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
