package engine

import (
	"context"
	"math"

	"github.com/aideroster/aideroster/internal/roster"
)

// DurationStepMinutes is the granularity of duration choices.
const DurationStepMinutes = 15

// DurationOption is one selectable duration for a flexible task.
type DurationOption struct {
	Minutes int
	Hours   float64
}

// DurationOptions returns the closed set of duration choices, in 15-minute
// steps up to the engine's configured maximum.
func (e *Engine) DurationOptions() []DurationOption {
	opts := make([]DurationOption, 0, e.cfg.MaxFlexibleMinutes/DurationStepMinutes)
	for m := DurationStepMinutes; m <= e.cfg.MaxFlexibleMinutes; m += DurationStepMinutes {
		opts = append(opts, DurationOption{Minutes: m, Hours: float64(m) / 60})
	}
	return opts
}

// PendingMove is a flexible-task drop waiting for the user to pick a
// duration. The negotiation happens before any commit: confirming builds the
// assign mutation and runs it through the normal conflict-check pipeline;
// cancelling discards the move with no local or remote effect.
type PendingMove struct {
	engine     *Engine
	assignment *roster.Assignment
	aideID     int64
	day        string
	date       string // "YYYY-MM-DD" for day in the viewed week
	dropTime   string // "HH:MM"
}

// Assignment returns the assignment being moved.
func (p *PendingMove) Assignment() *roster.Assignment {
	return p.assignment.Clone()
}

// Slot describes the drop target for display.
func (p *PendingMove) Slot() (aideID int64, day, dropTime string) {
	return p.aideID, p.day, p.dropTime
}

// EndTimeFor previews the end time a duration choice would produce.
func (p *PendingMove) EndTimeFor(hours float64) string {
	return roster.AddMinutes(p.dropTime, int(math.Round(hours*60)))
}

// Confirm finalizes the move with the chosen duration in hours (fractional,
// e.g. 1.25 for 75 minutes). The duration must be one of the offered options.
func (p *PendingMove) Confirm(ctx context.Context, hours float64) (*MoveResult, error) {
	e := p.engine

	minutes := int(math.Round(hours * 60))
	if minutes <= 0 || minutes%DurationStepMinutes != 0 || minutes > e.cfg.MaxFlexibleMinutes {
		return nil, ErrInvalidDuration
	}

	e.mu.Lock()
	if e.pending != p {
		e.mu.Unlock()
		return nil, ErrNoPendingMove
	}
	e.pending = nil
	e.mu.Unlock()

	end := roster.AddMinutes(p.dropTime, minutes)
	m := assignMutation(p.assignment.ID, p.aideID, p.date, p.dropTime, end)
	return e.checkAndCommit(ctx, p.assignment, m)
}

// Cancel abandons the move. No mutation was applied, so there is nothing to
// undo.
func (p *PendingMove) Cancel() {
	e := p.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == p {
		e.pending = nil
	}
}
