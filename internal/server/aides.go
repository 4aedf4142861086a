package server

import (
	"net/http"
	"strings"

	"github.com/aideroster/aideroster/internal/roster"
)

func (h *Handler) listAides(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListAides(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*roster.TeacherAide{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAide(w http.ResponseWriter, r *http.Request) {
	var aide roster.TeacherAide
	if err := decodeJSON(r, &aide); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	aide.ID = 0
	aide.Name = strings.TrimSpace(aide.Name)
	if aide.Name == "" {
		writeErr(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	if err := h.repo.CreateAide(r.Context(), &aide); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &aide)
}

func (h *Handler) listAbsences(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListAbsences(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*roster.Absence{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createAbsence(w http.ResponseWriter, r *http.Request) {
	var ab roster.Absence
	if err := decodeJSON(r, &ab); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ab.ID = 0
	if ab.AideID == 0 {
		writeErr(w, http.StatusUnprocessableEntity, "aide_id is required")
		return
	}

	if err := h.repo.CreateAbsence(r.Context(), &ab); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &ab)
}
