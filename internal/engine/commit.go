package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/aideroster/aideroster/internal/roster"
)

// commit applies a mutation optimistically, persists it, and rolls back the
// working set if the remote update fails.
//
// Commits on the same assignment id serialize: a second move on an id with an
// in-flight commit waits for that commit to succeed or roll back before its
// own optimistic state is applied. Different ids commit independently.
func (e *Engine) commit(ctx context.Context, m Mutation) (*roster.Assignment, error) {
	e.locks.Lock(m.AssignmentID)
	defer e.locks.Unlock(m.AssignmentID)

	current, ok := e.store.get(m.AssignmentID)
	if !ok {
		return nil, ErrStaleReference
	}
	original := current.Clone()

	updated := m.apply(original)
	e.store.put(updated)

	stored, err := e.boundary.UpdateAssignment(ctx, updated.Clone())
	if err != nil {
		e.store.put(original)
		e.cfg.Logger.Printf("rolled back assignment %d: %v", m.AssignmentID, err)
		return nil, &PersistenceError{
			Op:  fmt.Sprintf("updating assignment %d", m.AssignmentID),
			Err: err,
		}
	}

	if stored != nil {
		e.store.put(stored.Clone())
		return stored.Clone(), nil
	}
	return updated.Clone(), nil
}

// commitReplace applies the two-record replace optimistically and restores
// both records if the remote transaction fails.
func (e *Engine) commitReplace(ctx context.Context, c *Conflict) (*Resolution, error) {
	confID := c.Conflicting.ID
	candID := c.Candidate.ID

	// Lock in id order so concurrent replaces cannot deadlock.
	first, second := confID, candID
	if second < first {
		first, second = second, first
	}
	e.locks.Lock(first)
	defer e.locks.Unlock(first)
	if second != first {
		e.locks.Lock(second)
		defer e.locks.Unlock(second)
	}

	origConf, ok := e.store.get(confID)
	if !ok {
		origConf = c.Conflicting
	}
	origConf = origConf.Clone()
	origCand := c.Original.Clone()

	e.store.put(unassignMutation(confID).apply(origConf))
	e.store.put(c.Candidate.Clone())

	res, err := e.boundary.ReplaceAssignment(ctx, ReplaceRequest{
		ConflictingID: confID,
		Assignment:    c.Candidate.Clone(),
	})
	if err != nil {
		e.store.put(origConf)
		e.store.put(origCand)
		e.cfg.Logger.Printf("rolled back replace of assignment %d by %d: %v", confID, candID, err)
		return nil, &PersistenceError{
			Op:  fmt.Sprintf("replacing assignment %d with %d", confID, candID),
			Err: err,
		}
	}

	out := &Resolution{}
	if res.Assignment != nil {
		e.store.put(res.Assignment.Clone())
		out.Assigned = res.Assignment.Clone()
	}
	if res.Unassigned != nil {
		e.store.put(res.Unassigned.Clone())
		out.Unassigned = res.Unassigned.Clone()
	}
	return out, nil
}

// mutexMap hands out one mutex per assignment id so commits on the same
// record serialize while unrelated records stay independent.
type mutexMap struct {
	mu      sync.Mutex
	mutexes map[int64]*sync.Mutex
}

func newMutexMap() *mutexMap {
	return &mutexMap{
		mutexes: make(map[int64]*sync.Mutex),
	}
}

func (m *mutexMap) Lock(id int64) {
	m.get(id).Lock()
}

func (m *mutexMap) Unlock(id int64) {
	m.get(id).Unlock()
}

func (m *mutexMap) get(id int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mu, ok := m.mutexes[id]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	m.mutexes[id] = mu
	return mu
}
