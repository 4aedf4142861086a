package engine

import (
	"sort"
	"sync"

	"github.com/aideroster/aideroster/internal/roster"
)

// Store is the engine-owned working set: every assignment currently loaded,
// assigned and unassigned alike, keyed by id. Task templates are held
// alongside for fixed-schedule lookups.
//
// Nothing outside this package mutates a record's schedule fields; the only
// write paths are the engine's move and resolve operations. Accessors hand
// out clones so callers cannot reach the engine's copies.
type Store struct {
	mu          sync.RWMutex
	assignments map[int64]*roster.Assignment
	tasks       map[int64]*roster.Task
}

// NewStore creates an empty working set.
func NewStore() *Store {
	return &Store{
		assignments: make(map[int64]*roster.Assignment),
		tasks:       make(map[int64]*roster.Task),
	}
}

// LoadAssignments replaces the working set with the given records.
func (s *Store) LoadAssignments(list []*roster.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = make(map[int64]*roster.Assignment, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		s.assignments[a.ID] = a.Clone()
	}
}

// LoadTasks replaces the read-only task templates.
func (s *Store) LoadTasks(list []*roster.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[int64]*roster.Task, len(list))
	for _, t := range list {
		if t == nil {
			continue
		}
		c := *t
		s.tasks[t.ID] = &c
	}
}

// Assignment returns a copy of the record with the given id.
func (s *Store) Assignment(id int64) (*roster.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Task returns a copy of the task template with the given id.
func (s *Store) Task(id int64) (*roster.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	c := *t
	return &c, true
}

// Snapshot returns copies of every assignment, ordered by id.
func (s *Store) Snapshot() []*roster.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*roster.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of assignments in the working set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments)
}

// put stores a record, replacing any previous version of the same id.
func (s *Store) put(a *roster.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
}

// get returns the engine's live record without cloning.
func (s *Store) get(id int64) (*roster.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	return a, ok
}
