// Package roster defines the core domain types for aideroster.
package roster

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrInvalidStatus     = errors.New("invalid assignment status")
	ErrInvalidWeekday    = errors.New("unknown weekday name")
)

// Domain errors.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAideNotFound       = errors.New("teacher aide not found")
	ErrScheduleConflict   = errors.New("assignment overlaps an existing assignment")
)

// Status represents the lifecycle state of an assignment.
type Status string

const (
	StatusUnassigned Status = "UNASSIGNED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusUnassigned, StatusAssigned, StatusInProgress, StatusComplete:
		return true
	default:
		return false
	}
}

// transitions lists the allowed status changes. Completion is terminal;
// everything else can return to the pool.
var transitions = map[Status][]Status{
	StatusUnassigned: {StatusAssigned},
	StatusAssigned:   {StatusUnassigned, StatusInProgress},
	StatusInProgress: {StatusAssigned, StatusUnassigned, StatusComplete},
	StatusComplete:   {},
}

// CanTransitionTo reports whether a status change from s to next is allowed.
// A no-change "transition" is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Assignment is a scheduled (or not yet scheduled) occurrence of a task.
//
// The schedule fields obey a single invariant: an UNASSIGNED assignment has no
// aide, date, or times; any other status requires all four.
type Assignment struct {
	ID           int64  `json:"id"`
	TaskID       int64  `json:"task_id"`
	TaskTitle    string `json:"task_title"`
	TaskCategory string `json:"task_category"`
	AideID       *int64 `json:"aide_id"`
	Date         string `json:"date,omitempty"`       // "YYYY-MM-DD", empty when unassigned
	StartTime    string `json:"start_time,omitempty"` // "HH:MM", empty when unassigned
	EndTime      string `json:"end_time,omitempty"`   // "HH:MM", empty when unassigned
	Status       Status `json:"status"`
	IsFlexible   bool   `json:"is_flexible"`
}

// Unassigned returns true if the assignment sits in the unassigned pool.
func (a *Assignment) Unassigned() bool {
	return a.Status == StatusUnassigned
}

// Scheduled returns true if the assignment occupies a slot on the grid.
func (a *Assignment) Scheduled() bool {
	return a.Status == StatusAssigned || a.Status == StatusInProgress || a.Status == StatusComplete
}

// Validate checks the status/schedule-field invariant.
func (a *Assignment) Validate() error {
	if !a.Status.Valid() {
		return ErrInvalidStatus
	}

	if a.Status == StatusUnassigned {
		if a.AideID != nil || a.Date != "" || a.StartTime != "" || a.EndTime != "" {
			return fmt.Errorf("unassigned assignment %d must have no aide, date, or times", a.ID)
		}
		return nil
	}

	if a.AideID == nil {
		return fmt.Errorf("assignment %d with status %s requires an aide", a.ID, a.Status)
	}
	if err := ValidateDate(a.Date); err != nil {
		return fmt.Errorf("assignment %d date: %w", a.ID, err)
	}
	if err := ValidateClock(a.StartTime); err != nil {
		return fmt.Errorf("assignment %d start time: %w", a.ID, err)
	}
	if err := ValidateClock(a.EndTime); err != nil {
		return fmt.Errorf("assignment %d end time: %w", a.ID, err)
	}
	if a.EndTime <= a.StartTime {
		return ErrEndBeforeStart
	}
	return nil
}

// Clone returns a deep copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	c := *a
	if a.AideID != nil {
		id := *a.AideID
		c.AideID = &id
	}
	return &c
}

// Equal reports whether two assignments hold identical field values.
func (a *Assignment) Equal(b *Assignment) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.AideID == nil || b.AideID == nil {
		if a.AideID != b.AideID {
			return false
		}
	} else if *a.AideID != *b.AideID {
		return false
	}
	return a.ID == b.ID &&
		a.TaskID == b.TaskID &&
		a.TaskTitle == b.TaskTitle &&
		a.TaskCategory == b.TaskCategory &&
		a.Date == b.Date &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.Status == b.Status &&
		a.IsFlexible == b.IsFlexible
}

// OverlapsWith returns true if both assignments occupy the same aide's time on
// the same date. Unassigned records never overlap anything.
func (a *Assignment) OverlapsWith(other *Assignment) bool {
	if other == nil || a.Unassigned() || other.Unassigned() {
		return false
	}
	if a.AideID == nil || other.AideID == nil || *a.AideID != *other.AideID {
		return false
	}
	if a.Date != other.Date {
		return false
	}
	return TimesOverlap(a.StartTime, a.EndTime, other.StartTime, other.EndTime)
}

// ValidateClock checks that s is a well-formed "HH:MM" clock string.
func ValidateClock(s string) error {
	if len(s) != 5 {
		return ErrInvalidTimeFormat
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTimeFormat
	}
	return nil
}

// ValidateDate checks that s is a well-formed "YYYY-MM-DD" date string.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDateFormat
	}
	return nil
}
