package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aideroster/aideroster/internal/roster"
)

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start_date")
	end := q.Get("end_date")
	if (start == "") != (end == "") {
		writeErr(w, http.StatusUnprocessableEntity, "start_date and end_date must be given together")
		return
	}
	if start != "" {
		if err := roster.ValidateDate(start); err != nil {
			writeErr(w, http.StatusUnprocessableEntity, "invalid start_date")
			return
		}
		if err := roster.ValidateDate(end); err != nil {
			writeErr(w, http.StatusUnprocessableEntity, "invalid end_date")
			return
		}
	}

	list, err := h.repo.ListAssignments(r.Context(), start, end)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*roster.Assignment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var a roster.Assignment
	if err := decodeJSON(r, &a); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a.ID = 0
	if a.Status == "" {
		a.Status = roster.StatusUnassigned
	}
	if a.TaskTitle == "" {
		writeErr(w, http.StatusUnprocessableEntity, "task_title is required")
		return
	}
	if err := a.Validate(); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if a.Scheduled() {
		conflict, err := h.repo.FindConflict(r.Context(), *a.AideID, a.Date, a.StartTime, a.EndTime, 0)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if conflict != nil {
			writeErr(w, http.StatusConflict, "assignment conflicts with an existing assignment")
			return
		}
	}

	if err := h.repo.CreateAssignment(r.Context(), &a); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &a)
}

func (h *Handler) getAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "invalid assignment id")
		return
	}

	a, err := h.repo.GetAssignment(r.Context(), id)
	if errors.Is(err, roster.ErrAssignmentNotFound) {
		writeErr(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// updateAssignment handles PUT and PATCH alike: the body is decoded over the
// stored record, so a partial body updates only the fields it names.
func (h *Handler) updateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "invalid assignment id")
		return
	}

	a, err := h.repo.GetAssignment(r.Context(), id)
	if errors.Is(err, roster.ErrAssignmentNotFound) {
		writeErr(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	prev := a.Status
	if err := decodeJSON(r, a); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a.ID = id

	if !prev.CanTransitionTo(a.Status) {
		writeErr(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("cannot change status from %s to %s", prev, a.Status))
		return
	}

	// An unassign body carries status only; clear what it cannot null out.
	if a.Status == roster.StatusUnassigned {
		a.AideID = nil
		a.Date, a.StartTime, a.EndTime = "", "", ""
	}

	if err := a.Validate(); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if a.Scheduled() {
		conflict, err := h.repo.FindConflict(r.Context(), *a.AideID, a.Date, a.StartTime, a.EndTime, id)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if conflict != nil {
			writeErr(w, http.StatusConflict, "assignment conflicts with an existing assignment")
			return
		}
	}

	stored, err := h.repo.UpdateAssignment(r.Context(), a)
	if errors.Is(err, roster.ErrAssignmentNotFound) {
		writeErr(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

type checkRequest struct {
	AideID       *int64 `json:"aide_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	AssignmentID int64  `json:"assignment_id"`
}

type checkResponse struct {
	HasConflict bool               `json:"has_conflict"`
	Conflicting *roster.Assignment `json:"conflicting_assignment,omitempty"`
}

// checkConflict answers a conflict probe. A conflict is a valid answer, not
// an error, so the response is 200 either way.
func (h *Handler) checkConflict(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AideID == nil {
		writeErr(w, http.StatusUnprocessableEntity, "aide_id is required")
		return
	}
	if err := roster.ValidateDate(req.Date); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}
	if err := roster.ValidateClock(req.StartTime); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "invalid start_time")
		return
	}
	if err := roster.ValidateClock(req.EndTime); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "invalid end_time")
		return
	}
	if req.EndTime <= req.StartTime {
		writeErr(w, http.StatusUnprocessableEntity, "start_time must be before end_time")
		return
	}

	conflict, err := h.repo.FindConflict(r.Context(), *req.AideID, req.Date, req.StartTime, req.EndTime, req.AssignmentID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{HasConflict: conflict != nil, Conflicting: conflict})
}

type replaceRequest struct {
	ConflictingAssignmentID int64  `json:"conflicting_assignment_id"`
	AssignmentID            int64  `json:"assignment_id"`
	AideID                  *int64 `json:"aide_id"`
	Date                    string `json:"date"`
	StartTime               string `json:"start_time"`
	EndTime                 string `json:"end_time"`
	TaskID                  int64  `json:"task_id"`
}

type replaceResponse struct {
	Assignment *roster.Assignment `json:"assignment"`
	Unassigned *roster.Assignment `json:"unassigned"`
}

// replaceAssignment runs the atomic two-record swap: the conflicting record
// goes back to the pool and the named assignment takes its slot.
func (h *Handler) replaceAssignment(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ConflictingAssignmentID == 0 || req.AssignmentID == 0 {
		writeErr(w, http.StatusUnprocessableEntity, "conflicting_assignment_id and assignment_id are required")
		return
	}
	if req.AideID == nil {
		writeErr(w, http.StatusUnprocessableEntity, "aide_id is required")
		return
	}

	a, err := h.repo.GetAssignment(r.Context(), req.AssignmentID)
	if errors.Is(err, roster.ErrAssignmentNotFound) {
		writeErr(w, http.StatusNotFound, "assignment not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	a.AideID = req.AideID
	a.Date = req.Date
	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	a.Status = roster.StatusAssigned
	if err := a.Validate(); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	assigned, unassigned, err := h.repo.ReplaceAssignment(r.Context(), req.ConflictingAssignmentID, a)
	if errors.Is(err, roster.ErrAssignmentNotFound) {
		writeErr(w, http.StatusNotFound, "conflicting assignment not found")
		return
	}
	if errors.Is(err, roster.ErrScheduleConflict) {
		writeErr(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, replaceResponse{Assignment: assigned, Unassigned: unassigned})
}
