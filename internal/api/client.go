// Package api is the HTTP persistence boundary: a JSON client for the
// roster server, satisfying the engine's Scheduler interface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aideroster/aideroster/internal/engine"
	"github.com/aideroster/aideroster/internal/roster"
)

const (
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// DefaultCheckRetries is how many times an idempotent conflict check is
	// retried on transport or server failure. Mutating calls never retry.
	DefaultCheckRetries = 2

	// DefaultRetryDelay is the pause between conflict-check retries.
	DefaultRetryDelay = 250 * time.Millisecond
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Config holds client settings. The zero value of every field except BaseURL
// falls back to a default.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	CheckRetries int
	RetryDelay   time.Duration
}

// Client talks JSON to the roster server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	checkRetries int
	retryDelay   time.Duration
}

var _ engine.Scheduler = (*Client)(nil)

// New creates a Client for the server at cfg.BaseURL.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CheckRetries < 0 {
		cfg.CheckRetries = 0
	}
	if cfg.CheckRetries == 0 {
		cfg.CheckRetries = DefaultCheckRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		checkRetries: cfg.CheckRetries,
		retryDelay:   cfg.RetryDelay,
	}
}

// do sends one request and decodes the JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}

// checkRequest is the wire form of a conflict probe. AssignmentID excludes
// the record being moved from its own check.
type checkRequest struct {
	AideID       int64  `json:"aide_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	AssignmentID int64  `json:"assignment_id,omitempty"`
}

// CheckConflict asks the server whether the slot is occupied. The check is
// read-only, so transport and 5xx failures are retried a bounded number of
// times before giving up.
func (c *Client) CheckConflict(ctx context.Context, aideID int64, date, start, end string, excludeID int64) (*engine.ConflictCheck, error) {
	req := checkRequest{AideID: aideID, Date: date, StartTime: start, EndTime: end, AssignmentID: excludeID}

	var lastErr error
	for attempt := 0; attempt <= c.checkRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		var check engine.ConflictCheck
		err := c.do(ctx, http.MethodPost, "/api/assignments/check", req, &check)
		if err == nil {
			return &check, nil
		}
		lastErr = err

		var serr *StatusError
		if errors.As(err, &serr) && serr.StatusCode < 500 {
			// 4xx is a real answer, not a transient fault.
			return nil, err
		}
	}

	return nil, fmt.Errorf("conflict check exhausted retries: %w", lastErr)
}

// UpdateAssignment persists a single-record mutation. Never retried: a
// duplicate PUT after an ambiguous failure could clobber a newer state.
func (c *Client) UpdateAssignment(ctx context.Context, a *roster.Assignment) (*roster.Assignment, error) {
	var updated roster.Assignment
	path := fmt.Sprintf("/api/assignments/%d", a.ID)
	if err := c.do(ctx, http.MethodPut, path, a, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// replaceRequest is the wire form of the atomic two-record replace.
type replaceRequest struct {
	ConflictingAssignmentID int64  `json:"conflicting_assignment_id"`
	AssignmentID            int64  `json:"assignment_id"`
	AideID                  int64  `json:"aide_id"`
	Date                    string `json:"date"`
	StartTime               string `json:"start_time"`
	EndTime                 string `json:"end_time"`
	TaskID                  int64  `json:"task_id,omitempty"`
}

// ReplaceAssignment runs the server-side two-record transaction. Never
// retried.
func (c *Client) ReplaceAssignment(ctx context.Context, req engine.ReplaceRequest) (*engine.ReplaceResult, error) {
	a := req.Assignment
	if a == nil || a.AideID == nil {
		return nil, fmt.Errorf("replace request has no scheduled assignment")
	}

	wire := replaceRequest{
		ConflictingAssignmentID: req.ConflictingID,
		AssignmentID:            a.ID,
		AideID:                  *a.AideID,
		Date:                    a.Date,
		StartTime:               a.StartTime,
		EndTime:                 a.EndTime,
		TaskID:                  a.TaskID,
	}

	var result engine.ReplaceResult
	if err := c.do(ctx, http.MethodPost, "/api/assignments/replace", wire, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAssignments fetches assignments for the initial load. Empty bounds
// fetch everything.
func (c *Client) ListAssignments(ctx context.Context, start, end string) ([]*roster.Assignment, error) {
	path := "/api/assignments"
	if start != "" && end != "" {
		path += fmt.Sprintf("?start_date=%s&end_date=%s", start, end)
	}

	var list []*roster.Assignment
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAides fetches all teacher aides.
func (c *Client) ListAides(ctx context.Context) ([]*roster.TeacherAide, error) {
	var list []*roster.TeacherAide
	if err := c.do(ctx, http.MethodGet, "/api/teacher-aides", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAbsences fetches all recorded absences.
func (c *Client) ListAbsences(ctx context.Context) ([]*roster.Absence, error) {
	var list []*roster.Absence
	if err := c.do(ctx, http.MethodGet, "/api/absences", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
