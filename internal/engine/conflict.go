package engine

import (
	"context"
	"fmt"

	"github.com/aideroster/aideroster/internal/roster"
)

// ResolutionState tracks the conflict resolution machine:
// Idle -> AwaitingDecision -> (Replacing | Cancelled) -> Idle.
type ResolutionState int

const (
	StateIdle ResolutionState = iota
	StateAwaitingDecision
	StateReplacing
	StateCancelled
)

// String returns the state name.
func (s ResolutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateReplacing:
		return "replacing"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("ResolutionState(%d)", int(s))
	}
}

// Decision is the user's answer to a conflict.
type Decision int

const (
	DecisionReplace Decision = iota
	DecisionCancel
)

// Conflict is the transient record carried by a resolution dialog: the
// assignment already occupying the slot, the candidate that wants it, and the
// candidate's pre-move state. It lives only until the user decides.
type Conflict struct {
	Conflicting *roster.Assignment
	Candidate   *roster.Assignment
	Original    *roster.Assignment

	engine *Engine
}

// Conflict returns the conflict awaiting a decision, or nil.
func (e *Engine) Conflict() *Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conflict
}

// Resolution carries both records after a successful replace. Empty when the
// user cancelled.
type Resolution struct {
	Assigned   *roster.Assignment
	Unassigned *roster.Assignment
}

// Resolve applies the user's decision to the active conflict.
//
// Replace runs the atomic two-record transaction through the persistence
// boundary: the conflicting assignment is unassigned and the candidate takes
// its slot, with both local changes rolled back if the remote call fails.
// Cancel discards the candidate; the grid was never mutated while the
// decision was pending, so both records keep their pre-conflict state.
func (e *Engine) Resolve(ctx context.Context, d Decision) (*Resolution, error) {
	e.mu.Lock()
	if e.resolution != StateAwaitingDecision || e.conflict == nil {
		e.mu.Unlock()
		return nil, ErrNoConflictPending
	}
	c := e.conflict

	switch d {
	case DecisionCancel:
		e.resolution = StateCancelled
		e.conflict = nil
		e.resolution = StateIdle
		e.mu.Unlock()
		// Restore the pre-move record in case a caller published the
		// candidate ahead of the decision.
		e.store.put(c.Original.Clone())
		return &Resolution{}, nil

	case DecisionReplace:
		e.resolution = StateReplacing
		e.mu.Unlock()

		res, err := e.commitReplace(ctx, c)

		e.mu.Lock()
		e.conflict = nil
		e.resolution = StateIdle
		e.mu.Unlock()
		return res, err

	default:
		e.mu.Unlock()
		return nil, fmt.Errorf("unknown decision %d", d)
	}
}

// Resolve is a convenience forwarding to the owning engine.
func (c *Conflict) Resolve(ctx context.Context, d Decision) (*Resolution, error) {
	return c.engine.Resolve(ctx, d)
}
