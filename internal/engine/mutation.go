package engine

import (
	"github.com/aideroster/aideroster/internal/roster"
)

// Mutation is a fully-formed candidate change to one assignment's schedule
// fields. Applying it to the current record yields the optimistic state.
type Mutation struct {
	AssignmentID int64
	AideID       *int64 // nil when unassigning
	Date         string
	StartTime    string
	EndTime      string
	Status       roster.Status
}

// unassignMutation clears every schedule field (back to the pool).
func unassignMutation(id int64) Mutation {
	return Mutation{AssignmentID: id, Status: roster.StatusUnassigned}
}

// assignMutation binds an assignment to a concrete slot.
func assignMutation(id, aideID int64, date, start, end string) Mutation {
	return Mutation{
		AssignmentID: id,
		AideID:       &aideID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		Status:       roster.StatusAssigned,
	}
}

// apply returns a copy of a with the mutation's schedule fields in place.
func (m Mutation) apply(a *roster.Assignment) *roster.Assignment {
	updated := a.Clone()
	updated.Status = m.Status
	updated.Date = m.Date
	updated.StartTime = m.StartTime
	updated.EndTime = m.EndTime
	if m.AideID == nil {
		updated.AideID = nil
	} else {
		id := *m.AideID
		updated.AideID = &id
	}
	return updated
}
