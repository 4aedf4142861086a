// Package engine turns drag gestures into validated, conflict-checked
// assignment mutations.
//
// The engine owns the single in-memory working set of assignments. Every
// schedule mutation flows through one pipeline: decode the gesture's slot
// tokens, build a candidate mutation, run the remote conflict check, then
// either commit optimistically or park the move behind a user decision
// (duration choice for flexible tasks, replace-or-cancel for conflicts).
// Commits apply locally first and roll back if the persistence boundary
// rejects them, so the working set never durably disagrees with the server.
package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aideroster/aideroster/internal/roster"
)

// Engine errors.
var (
	ErrStaleReference    = errors.New("dragged assignment no longer exists")
	ErrInvalidFixedSlot  = errors.New("task can only be assigned to its own time slot")
	ErrDecisionPending   = errors.New("a move is awaiting a user decision")
	ErrNoConflictPending = errors.New("no conflict awaiting resolution")
	ErrNoPendingMove     = errors.New("no move awaiting a duration")
	ErrInvalidDuration   = errors.New("duration must be a 15-minute multiple within the allowed range")
)

// DefaultMaxFlexibleMinutes caps duration negotiation at 3 hours.
const DefaultMaxFlexibleMinutes = 180

// Config holds engine settings.
type Config struct {
	// Week anchors grid day names to concrete dates: the Monday of the week
	// being viewed. Zero means the week containing Now().
	Week time.Time

	// MaxFlexibleMinutes bounds the duration choices offered for flexible
	// tasks. Defaults to DefaultMaxFlexibleMinutes.
	MaxFlexibleMinutes int

	// Now is injectable for testing. Defaults to time.Now.
	Now func() time.Time

	// Logger receives parse-failure and rollback notices. Defaults to the
	// standard logger.
	Logger *log.Logger
}

// Engine coordinates assignment moves against the working set and the
// persistence boundary.
type Engine struct {
	store    *Store
	boundary Scheduler
	cfg      Config

	locks *mutexMap

	// mu guards the modal decision state below. Only one decision (duration
	// or conflict) may be outstanding at a time.
	mu         sync.Mutex
	pending    *PendingMove
	resolution ResolutionState
	conflict   *Conflict
}

// New creates an Engine over the given working set and persistence boundary.
func New(store *Store, boundary Scheduler, cfg Config) *Engine {
	if cfg.MaxFlexibleMinutes <= 0 {
		cfg.MaxFlexibleMinutes = DefaultMaxFlexibleMinutes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Engine{
		store:    store,
		boundary: boundary,
		cfg:      cfg,
		locks:    newMutexMap(),
	}
}

// Store returns the engine-owned working set.
func (e *Engine) Store() *Store {
	return e.store
}

// SetWeek re-anchors grid day names to the week starting at the given Monday.
func (e *Engine) SetWeek(monday time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Week = monday
}

// week returns the Monday anchoring the viewed week.
func (e *Engine) week() time.Time {
	if e.cfg.Week.IsZero() {
		return roster.WeekStart(e.cfg.Now())
	}
	return roster.WeekStart(e.cfg.Week)
}

// State returns the conflict resolution state.
func (e *Engine) State() ResolutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolution
}

// decisionPending reports whether a duration or conflict decision is
// outstanding. Callers must hold e.mu.
func (e *Engine) decisionPending() bool {
	return e.pending != nil || e.resolution != StateIdle
}
