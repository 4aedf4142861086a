package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aideroster/aideroster/internal/db"
	"github.com/aideroster/aideroster/internal/roster"
)

func newTestServer(t *testing.T) (*httptest.Server, roster.Repository) {
	t.Helper()

	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	mux := http.NewServeMux()
	New(repo).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, repo
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp, out.Bytes()
}

func int64Ptr(v int64) *int64 { return &v }

func seedAssigned(t *testing.T, repo roster.Repository, aideID int64, date, start, end string) *roster.Assignment {
	t.Helper()

	a := &roster.Assignment{
		TaskID:    1,
		TaskTitle: "Bus duty",
		AideID:    int64Ptr(aideID),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    roster.StatusAssigned,
	}
	if err := repo.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("seeding assignment: %v", err)
	}
	return a
}

func seedUnassigned(t *testing.T, repo roster.Repository, title string) *roster.Assignment {
	t.Helper()

	a := &roster.Assignment{TaskID: 2, TaskTitle: title, Status: roster.StatusUnassigned, IsFlexible: true}
	if err := repo.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("seeding assignment: %v", err)
	}
	return a
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if out["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", out["status"])
	}
}

func TestAssignmentsEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	seedAssigned(t, repo, 1, "2026-03-03", "09:00", "10:00")
	outOfWeek := seedAssigned(t, repo, 1, "2026-03-10", "09:00", "10:00")
	pooled := seedUnassigned(t, repo, "Reading support")

	t.Run("list with range keeps pooled rows", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/assignments?start_date=2026-03-02&end_date=2026-03-06", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var list []*roster.Assignment
		if err := json.Unmarshal(body, &list); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("len(list) = %d, want 2", len(list))
		}
		for _, a := range list {
			if a.ID == outOfWeek.ID {
				t.Errorf("range query returned out-of-week row %d", a.ID)
			}
		}
	})

	t.Run("lone range bound rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/assignments?start_date=2026-03-02", nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("create", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/assignments", map[string]any{
			"task_id":     3,
			"task_title":  "Yard duty",
			"is_flexible": true,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
		}
		var a roster.Assignment
		if err := json.Unmarshal(body, &a); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if a.ID == 0 || a.Status != roster.StatusUnassigned {
			t.Errorf("created = %+v", a)
		}
	})

	t.Run("update assigns and unassigns", func(t *testing.T) {
		url := fmt.Sprintf("%s/api/assignments/%d", srv.URL, pooled.ID)

		resp, body := doJSON(t, http.MethodPut, url, map[string]any{
			"aide_id":    1,
			"date":       "2026-03-04",
			"start_time": "10:00",
			"end_time":   "11:00",
			"status":     "ASSIGNED",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
		}
		var a roster.Assignment
		if err := json.Unmarshal(body, &a); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if a.AideID == nil || *a.AideID != 1 || a.Date != "2026-03-04" {
			t.Errorf("assigned = %+v", a)
		}

		// Partial body: status alone is enough to send it back to the pool.
		resp, body = doJSON(t, http.MethodPatch, url, map[string]any{"status": "UNASSIGNED"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, &a); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if a.AideID != nil || a.Date != "" || a.Status != roster.StatusUnassigned {
			t.Errorf("unassigned = %+v", a)
		}
	})

	t.Run("update overlapping slot conflicts", func(t *testing.T) {
		other := seedUnassigned(t, repo, "Lunch cover")
		url := fmt.Sprintf("%s/api/assignments/%d", srv.URL, other.ID)

		resp, _ := doJSON(t, http.MethodPut, url, map[string]any{
			"aide_id":    1,
			"date":       "2026-03-03",
			"start_time": "09:30",
			"end_time":   "10:30",
			"status":     "ASSIGNED",
		})
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("status = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("status walks the lifecycle", func(t *testing.T) {
		row := seedAssigned(t, repo, 2, "2026-03-05", "13:00", "14:00")
		url := fmt.Sprintf("%s/api/assignments/%d", srv.URL, row.ID)

		for _, status := range []string{"IN_PROGRESS", "COMPLETE"} {
			resp, body := doJSON(t, http.MethodPatch, url, map[string]any{"status": status})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("PATCH to %s: status = %d: %s", status, resp.StatusCode, body)
			}
		}

		// Completed work is terminal.
		resp, _ := doJSON(t, http.MethodPatch, url, map[string]any{"status": "ASSIGNED"})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("reopening a COMPLETE row: status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("skipping the lifecycle rejected", func(t *testing.T) {
		row := seedUnassigned(t, repo, "Photocopying")
		url := fmt.Sprintf("%s/api/assignments/%d", srv.URL, row.ID)

		resp, _ := doJSON(t, http.MethodPut, url, map[string]any{
			"aide_id":    2,
			"date":       "2026-03-06",
			"start_time": "08:00",
			"end_time":   "09:00",
			"status":     "COMPLETE",
		})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("update missing row", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/assignments/9999", map[string]any{"status": "UNASSIGNED"})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestCheckEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	occupier := seedAssigned(t, repo, 1, "2026-03-03", "09:00", "10:00")

	t.Run("conflict is a 200 answer", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/check", map[string]any{
			"aide_id":    1,
			"date":       "2026-03-03",
			"start_time": "09:00",
			"end_time":   "09:30",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
		}
		var out checkResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if !out.HasConflict || out.Conflicting == nil || out.Conflicting.ID != occupier.ID {
			t.Errorf("check = %+v", out)
		}
	})

	t.Run("free slot", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/check", map[string]any{
			"aide_id":    1,
			"date":       "2026-03-03",
			"start_time": "10:00",
			"end_time":   "11:00",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var out checkResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if out.HasConflict {
			t.Errorf("check = %+v, want no conflict", out)
		}
	})

	t.Run("own row excluded", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/check", map[string]any{
			"aide_id":       1,
			"date":          "2026-03-03",
			"start_time":    "09:00",
			"end_time":      "10:00",
			"assignment_id": occupier.ID,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var out checkResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if out.HasConflict {
			t.Errorf("record conflicts with itself: %+v", out)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]any
		}{
			{name: "missing aide_id", body: map[string]any{"date": "2026-03-03", "start_time": "09:00", "end_time": "10:00"}},
			{name: "bad date", body: map[string]any{"aide_id": 1, "date": "03/03/2026", "start_time": "09:00", "end_time": "10:00"}},
			{name: "bad time", body: map[string]any{"aide_id": 1, "date": "2026-03-03", "start_time": "9am", "end_time": "10:00"}},
			{name: "end before start", body: map[string]any{"aide_id": 1, "date": "2026-03-03", "start_time": "10:00", "end_time": "09:00"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/check", tt.body)
				if resp.StatusCode != http.StatusUnprocessableEntity {
					t.Errorf("status = %d, want 422", resp.StatusCode)
				}
			})
		}
	})
}

func TestReplaceEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	occupier := seedAssigned(t, repo, 1, "2026-03-03", "09:00", "10:00")
	challenger := seedUnassigned(t, repo, "Reading support")

	t.Run("missing ids rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/replace", map[string]any{
			"aide_id": 1, "date": "2026-03-03", "start_time": "09:00", "end_time": "10:00",
		})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
	})

	t.Run("swaps both records", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/replace", map[string]any{
			"conflicting_assignment_id": occupier.ID,
			"assignment_id":             challenger.ID,
			"aide_id":                   1,
			"date":                      "2026-03-03",
			"start_time":                "09:00",
			"end_time":                  "10:00",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
		}
		var out replaceResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if out.Assignment == nil || out.Assignment.ID != challenger.ID || out.Assignment.Status != roster.StatusAssigned {
			t.Errorf("assignment = %+v", out.Assignment)
		}
		if out.Unassigned == nil || out.Unassigned.ID != occupier.ID || out.Unassigned.Status != roster.StatusUnassigned {
			t.Errorf("unassigned = %+v", out.Unassigned)
		}

		stored, err := repo.GetAssignment(ctx, occupier.ID)
		if err != nil {
			t.Fatalf("GetAssignment() error = %v", err)
		}
		if stored.AideID != nil || stored.Date != "" {
			t.Errorf("occupier not cleared: %+v", stored)
		}
	})

	t.Run("missing conflicting row", func(t *testing.T) {
		another := seedUnassigned(t, repo, "Yard duty")
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/assignments/replace", map[string]any{
			"conflicting_assignment_id": 9999,
			"assignment_id":             another.ID,
			"aide_id":                   1,
			"date":                      "2026-03-05",
			"start_time":                "09:00",
			"end_time":                  "10:00",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestAidesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/teacher-aides", map[string]any{
		"name":           "Priya Sharma",
		"qualifications": "First aid",
		"colour_hex":     "#4f9da6",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/teacher-aides", map[string]any{"name": "   "})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("blank name status = %d, want 422", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/teacher-aides", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var list []*roster.TeacherAide
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Priya Sharma" {
		t.Errorf("list = %+v", list)
	}
}

func TestAbsencesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/absences", map[string]any{
		"aide_id":    1,
		"start_date": "2026-03-04",
		"end_date":   "2026-03-05",
		"reason":     "sick leave",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/absences", map[string]any{
		"aide_id":    1,
		"start_date": "2026-03-05",
		"end_date":   "2026-03-04",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("inverted range status = %d, want 422", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/absences", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var list []*roster.Absence
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(list) != 1 || list[0].Reason != "sick leave" {
		t.Errorf("list = %+v", list)
	}
}
