package engine

import (
	"context"
	"fmt"

	"github.com/aideroster/aideroster/internal/roster"
	"github.com/aideroster/aideroster/internal/slot"
)

// MoveRequest is the gesture boundary's drag-end signal: where the item came
// from, where it was dropped, and which assignment was dragged. Tokens follow
// the slot package grammar.
type MoveRequest struct {
	SourceToken string
	DestToken   string
	DraggedID   int64
	SourceIndex int
	DestIndex   int
}

// MoveResult is the outcome of a move request. Exactly one field is set:
// NoOp for a drag back to the same spot, Assignment for a committed move,
// Pending when a flexible task needs a duration, Conflict when the slot is
// occupied and the user must decide.
type MoveResult struct {
	NoOp       bool
	Assignment *roster.Assignment
	Pending    *PendingMove
	Conflict   *Conflict
}

// Move turns a drag-end signal into a validated state transition.
//
// Parse and validation failures abort before any network call and leave the
// working set untouched. A move that needs a user decision parks the engine:
// further moves are rejected with ErrDecisionPending until the decision
// resolves.
func (e *Engine) Move(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	src, err := slot.Decode(req.SourceToken)
	if err != nil {
		e.cfg.Logger.Printf("move aborted: source %v", err)
		return nil, err
	}
	dst, err := slot.Decode(req.DestToken)
	if err != nil {
		e.cfg.Logger.Printf("move aborted: destination %v", err)
		return nil, err
	}

	// Dropping an item back onto its own slot and position is a no-op: no
	// mutation, no network call.
	if src.Equal(dst) && req.SourceIndex == req.DestIndex {
		return &MoveResult{NoOp: true}, nil
	}

	e.mu.Lock()
	if e.decisionPending() {
		e.mu.Unlock()
		return nil, ErrDecisionPending
	}

	// Resolve the dragged record by id across the whole working set; list
	// indices are unstable across renders and never trusted here.
	a, ok := e.store.Assignment(req.DraggedID)
	if !ok {
		e.mu.Unlock()
		e.cfg.Logger.Printf("move aborted: assignment %d not in working set", req.DraggedID)
		return nil, ErrStaleReference
	}

	if dst.Unassigned() {
		e.mu.Unlock()
		committed, err := e.commit(ctx, unassignMutation(a.ID))
		if err != nil {
			return nil, err
		}
		return &MoveResult{Assignment: committed}, nil
	}

	date, err := roster.DateForWeekday(e.week(), dst.Day)
	if err != nil {
		e.mu.Unlock()
		e.cfg.Logger.Printf("move aborted: destination day %q: %v", dst.Day, err)
		return nil, fmt.Errorf("%w: day %q", slot.ErrInvalidToken, dst.Day)
	}

	if !a.IsFlexible {
		start, end := e.fixedSchedule(a)
		if dst.Time != start {
			e.mu.Unlock()
			return nil, ErrInvalidFixedSlot
		}
		e.mu.Unlock()
		return e.checkAndCommit(ctx, a, assignMutation(a.ID, dst.AideID, date, start, end))
	}

	// Flexible tasks have no duration until the user picks one; park the
	// move and report it pending. Nothing is committed or checked yet.
	p := &PendingMove{
		engine:     e,
		assignment: a,
		aideID:     dst.AideID,
		day:        dst.Day,
		date:       date,
		dropTime:   dst.Time,
	}
	e.pending = p
	e.mu.Unlock()
	return &MoveResult{Pending: p}, nil
}

// checkAndCommit runs the remote conflict check and either commits the
// mutation or parks it behind a replace-or-cancel decision.
func (e *Engine) checkAndCommit(ctx context.Context, original *roster.Assignment, m Mutation) (*MoveResult, error) {
	check, err := e.boundary.CheckConflict(ctx, *m.AideID, m.Date, m.StartTime, m.EndTime, m.AssignmentID)
	if err != nil {
		return nil, &PersistenceError{
			Op:  fmt.Sprintf("checking conflicts for assignment %d", m.AssignmentID),
			Err: err,
		}
	}

	if check.HasConflict {
		c := &Conflict{
			Conflicting: check.Conflicting,
			Candidate:   m.apply(original),
			Original:    original.Clone(),
			engine:      e,
		}
		e.mu.Lock()
		e.conflict = c
		e.resolution = StateAwaitingDecision
		e.mu.Unlock()
		return &MoveResult{Conflict: c}, nil
	}

	committed, err := e.commit(ctx, m)
	if err != nil {
		return nil, err
	}
	return &MoveResult{Assignment: committed}, nil
}

// fixedSchedule returns the task's fixed start/end times, preferring the task
// template over whatever the assignment currently carries.
func (e *Engine) fixedSchedule(a *roster.Assignment) (start, end string) {
	if t, ok := e.store.Task(a.TaskID); ok && t.StartTime != "" {
		return t.StartTime, t.EndTime
	}
	return a.StartTime, a.EndTime
}
