package engine

import (
	"context"
	"fmt"

	"github.com/aideroster/aideroster/internal/roster"
)

// Scheduler is the persistence boundary the engine commits through. It is
// consumed, not implemented, here; the HTTP client in internal/api satisfies
// it in production.
type Scheduler interface {
	// CheckConflict asks whether any ASSIGNED assignment other than excludeID
	// overlaps the candidate slot. The check is remote because local state may
	// be stale relative to concurrent edits by other users.
	CheckConflict(ctx context.Context, aideID int64, date, start, end string, excludeID int64) (*ConflictCheck, error)

	// UpdateAssignment persists a single-record mutation and returns the
	// canonical stored record.
	UpdateAssignment(ctx context.Context, a *roster.Assignment) (*roster.Assignment, error)

	// ReplaceAssignment atomically unassigns the conflicting record and
	// assigns the candidate. Both records change or neither does.
	ReplaceAssignment(ctx context.Context, req ReplaceRequest) (*ReplaceResult, error)
}

// ConflictCheck is the boundary's answer to a conflict probe.
type ConflictCheck struct {
	HasConflict bool               `json:"has_conflict"`
	Conflicting *roster.Assignment `json:"conflicting_assignment,omitempty"`
}

// ReplaceRequest names the two records of an atomic replace.
type ReplaceRequest struct {
	ConflictingID int64              `json:"conflicting_assignment_id"`
	Assignment    *roster.Assignment `json:"assignment"`
}

// ReplaceResult carries both records after a successful replace.
type ReplaceResult struct {
	Assignment *roster.Assignment `json:"assignment"`
	Unassigned *roster.Assignment `json:"unassigned"`
}

// PersistenceError reports a failed remote call. By the time it surfaces, the
// working set has already been rolled back to its pre-mutation state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
