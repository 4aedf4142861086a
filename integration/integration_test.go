// Package integration exercises the full stack: SQLite repository behind the
// HTTP server, the JSON client in front of it, and the move engine on top.
package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aideroster/aideroster/internal/api"
	"github.com/aideroster/aideroster/internal/db"
	"github.com/aideroster/aideroster/internal/engine"
	"github.com/aideroster/aideroster/internal/roster"
	"github.com/aideroster/aideroster/internal/server"
)

// weekStart is the Monday every test schedules against.
var weekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func slotToken(aideID int64, day, start string) string {
	return fmt.Sprintf("%d-%s-%s", aideID, day, start)
}

type stack struct {
	repo   *db.SQLite
	client *api.Client
	engine *engine.Engine
	store  *engine.Store
}

// newStack wires a fresh database, a real HTTP server, and an engine whose
// persistence boundary is the JSON client pointed at that server.
func newStack(t *testing.T) *stack {
	t.Helper()

	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	mux := http.NewServeMux()
	server.New(repo).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := api.New(api.Config{BaseURL: srv.URL})
	store := engine.NewStore()
	eng := engine.New(store, client, engine.Config{Week: weekStart})

	return &stack{repo: repo, client: client, engine: eng, store: store}
}

func (s *stack) createAide(t *testing.T, name string) *roster.TeacherAide {
	t.Helper()
	aide := &roster.TeacherAide{Name: name}
	if err := s.repo.CreateAide(context.Background(), aide); err != nil {
		t.Fatalf("creating aide: %v", err)
	}
	return aide
}

func (s *stack) createAssignment(t *testing.T, a *roster.Assignment) *roster.Assignment {
	t.Helper()
	if err := s.repo.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("creating assignment %q: %v", a.TaskTitle, err)
	}
	return a
}

// loadWeek pulls the viewed week through the client into the engine's
// working set, the way the grid does before rendering.
func (s *stack) loadWeek(t *testing.T) {
	t.Helper()
	list, err := s.client.ListAssignments(context.Background(), "2026-03-02", "2026-03-06")
	if err != nil {
		t.Fatalf("listing assignments: %v", err)
	}
	s.store.LoadAssignments(list)
}

// fetch reads an assignment straight from the database, bypassing the engine.
func (s *stack) fetch(t *testing.T, id int64) *roster.Assignment {
	t.Helper()
	a, err := s.repo.GetAssignment(context.Background(), id)
	if err != nil {
		t.Fatalf("fetching assignment %d: %v", id, err)
	}
	return a
}

func TestFlexibleMoveEndToEnd(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Dana Whitfield")

	pooled := s.createAssignment(t, &roster.Assignment{
		TaskID: 1, TaskTitle: "Library shelving",
		Status: roster.StatusUnassigned, IsFlexible: true,
	})
	s.loadWeek(t)

	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: "unassigned",
		DestToken:   slotToken(aide.ID, "tuesday", "10:00"),
		DraggedID:   pooled.ID,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Pending == nil {
		t.Fatalf("expected a pending duration choice, got %+v", res)
	}

	confirmed, err := res.Pending.Confirm(ctx, 1.25)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Assignment == nil {
		t.Fatalf("expected a committed assignment, got %+v", confirmed)
	}

	got := s.fetch(t, pooled.ID)
	if got.Status != roster.StatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", got.Status)
	}
	if got.Date != "2026-03-03" || got.StartTime != "10:00" || got.EndTime != "11:15" {
		t.Errorf("schedule = %s %s–%s, want 2026-03-03 10:00–11:15", got.Date, got.StartTime, got.EndTime)
	}
	if got.AideID == nil || *got.AideID != aide.ID {
		t.Errorf("aide = %v, want %d", got.AideID, aide.ID)
	}
}

func TestFixedMoveRequiresOwnSlot(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Marcus Obi")

	aideID := aide.ID
	fixed := s.createAssignment(t, &roster.Assignment{
		TaskID: 2, TaskTitle: "Morning bus duty",
		AideID: &aideID, Date: "2026-03-02", StartTime: "08:30", EndTime: "09:00",
		Status: roster.StatusAssigned,
	})
	s.loadWeek(t)

	_, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: slotToken(aide.ID, "monday", "08:30"),
		DestToken:   slotToken(aide.ID, "wednesday", "10:00"),
		DraggedID:   fixed.ID,
	})
	if !errors.Is(err, engine.ErrInvalidFixedSlot) {
		t.Fatalf("move off fixed time: err = %v, want ErrInvalidFixedSlot", err)
	}

	// Same clock time on another day is allowed.
	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: slotToken(aide.ID, "monday", "08:30"),
		DestToken:   slotToken(aide.ID, "wednesday", "08:30"),
		DraggedID:   fixed.ID,
	})
	if err != nil {
		t.Fatalf("move to own time: %v", err)
	}
	if res.Assignment == nil {
		t.Fatalf("expected a committed assignment, got %+v", res)
	}
	if got := s.fetch(t, fixed.ID); got.Date != "2026-03-04" {
		t.Errorf("date = %s, want 2026-03-04", got.Date)
	}
}

func TestConflictReplaceSwapsRecords(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Priya Nair")

	aideID := aide.ID
	occupying := s.createAssignment(t, &roster.Assignment{
		TaskID: 3, TaskTitle: "Reading group",
		AideID: &aideID, Date: "2026-03-03", StartTime: "09:00", EndTime: "10:00",
		Status: roster.StatusAssigned, IsFlexible: true,
	})
	incoming := s.createAssignment(t, &roster.Assignment{
		TaskID: 4, TaskTitle: "Lunch prep",
		Status: roster.StatusUnassigned, IsFlexible: true,
	})
	s.loadWeek(t)

	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: "unassigned",
		DestToken:   slotToken(aide.ID, "tuesday", "09:30"),
		DraggedID:   incoming.ID,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	confirmed, err := res.Pending.Confirm(ctx, 1.0)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Conflict == nil {
		t.Fatalf("expected a conflict, got %+v", confirmed)
	}
	if confirmed.Conflict.Conflicting.ID != occupying.ID {
		t.Errorf("conflicting id = %d, want %d", confirmed.Conflict.Conflicting.ID, occupying.ID)
	}

	resolution, err := s.engine.Resolve(ctx, engine.DecisionReplace)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolution.Assigned.ID != incoming.ID || resolution.Unassigned.ID != occupying.ID {
		t.Errorf("resolution = assigned %d / unassigned %d, want %d / %d",
			resolution.Assigned.ID, resolution.Unassigned.ID, incoming.ID, occupying.ID)
	}

	if got := s.fetch(t, occupying.ID); got.Status != roster.StatusUnassigned || got.AideID != nil {
		t.Errorf("displaced record not back in the pool: %+v", got)
	}
	got := s.fetch(t, incoming.ID)
	if got.Status != roster.StatusAssigned || got.StartTime != "09:30" || got.EndTime != "10:30" {
		t.Errorf("incoming record not in the slot: %+v", got)
	}
}

func TestConflictCancelLeavesDatabaseUntouched(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Dana Whitfield")

	aideID := aide.ID
	occupying := s.createAssignment(t, &roster.Assignment{
		TaskID: 5, TaskTitle: "Playground duty",
		AideID: &aideID, Date: "2026-03-05", StartTime: "12:00", EndTime: "13:00",
		Status: roster.StatusAssigned,
	})
	incoming := s.createAssignment(t, &roster.Assignment{
		TaskID: 6, TaskTitle: "Photocopying",
		Status: roster.StatusUnassigned, IsFlexible: true,
	})
	s.loadWeek(t)

	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: "unassigned",
		DestToken:   slotToken(aide.ID, "thursday", "12:30"),
		DraggedID:   incoming.ID,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	confirmed, err := res.Pending.Confirm(ctx, 0.5)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Conflict == nil {
		t.Fatalf("expected a conflict, got %+v", confirmed)
	}

	if _, err := s.engine.Resolve(ctx, engine.DecisionCancel); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got := s.fetch(t, occupying.ID); got.Status != roster.StatusAssigned || got.StartTime != "12:00" {
		t.Errorf("occupying record changed: %+v", got)
	}
	if got := s.fetch(t, incoming.ID); got.Status != roster.StatusUnassigned {
		t.Errorf("cancelled candidate left the pool: %+v", got)
	}
}

func TestMoveToPoolEndToEnd(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Marcus Obi")

	aideID := aide.ID
	assigned := s.createAssignment(t, &roster.Assignment{
		TaskID: 7, TaskTitle: "Reading group",
		AideID: &aideID, Date: "2026-03-06", StartTime: "14:00", EndTime: "15:00",
		Status: roster.StatusAssigned, IsFlexible: true,
	})
	s.loadWeek(t)

	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: slotToken(aide.ID, "friday", "14:00"),
		DestToken:   "unassigned",
		DraggedID:   assigned.ID,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Assignment == nil || !res.Assignment.Unassigned() {
		t.Fatalf("expected an unassigned result, got %+v", res)
	}

	got := s.fetch(t, assigned.ID)
	if got.Status != roster.StatusUnassigned {
		t.Errorf("status = %s, want UNASSIGNED", got.Status)
	}
	if got.AideID != nil || got.Date != "" || got.StartTime != "" || got.EndTime != "" {
		t.Errorf("schedule fields not cleared: %+v", got)
	}
}

func TestSameCellReorderMakesNoCalls(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	aide := s.createAide(t, "Priya Nair")

	aideID := aide.ID
	assigned := s.createAssignment(t, &roster.Assignment{
		TaskID: 8, TaskTitle: "Reading group",
		AideID: &aideID, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
		Status: roster.StatusAssigned, IsFlexible: true,
	})
	s.loadWeek(t)

	res, err := s.engine.Move(ctx, engine.MoveRequest{
		SourceToken: slotToken(aide.ID, "monday", "09:00"),
		DestToken:   slotToken(aide.ID, "monday", "09:00"),
		DraggedID:   assigned.ID,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !res.NoOp {
		t.Fatalf("expected a no-op, got %+v", res)
	}
	if got := s.fetch(t, assigned.ID); got.StartTime != "09:00" {
		t.Errorf("record changed by a no-op: %+v", got)
	}
}
