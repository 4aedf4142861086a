// Package server exposes the roster repository over HTTP. It implements the
// JSON API the scheduling client consumes.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/aideroster/aideroster/internal/roster"
)

// Handler serves the roster API over a repository.
type Handler struct {
	repo roster.Repository
}

// New creates a Handler over the given repository.
func New(repo roster.Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes registers every API route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.health)

	mux.HandleFunc("GET /api/assignments", h.listAssignments)
	mux.HandleFunc("POST /api/assignments", h.createAssignment)
	mux.HandleFunc("GET /api/assignments/{id}", h.getAssignment)
	mux.HandleFunc("PUT /api/assignments/{id}", h.updateAssignment)
	mux.HandleFunc("PATCH /api/assignments/{id}", h.updateAssignment)
	mux.HandleFunc("POST /api/assignments/check", h.checkConflict)
	mux.HandleFunc("POST /api/assignments/replace", h.replaceAssignment)

	mux.HandleFunc("GET /api/teacher-aides", h.listAides)
	mux.HandleFunc("POST /api/teacher-aides", h.createAide)

	mux.HandleFunc("GET /api/absences", h.listAbsences)
	mux.HandleFunc("POST /api/absences", h.createAbsence)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
