package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deptboard-api/internal/application/faculty"
	"github.com/deptboard-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// FacultyHandler handles the faculty roster.
type FacultyHandler struct {
	svc faculty.Service
}

func NewFacultyHandler(svc faculty.Service) *FacultyHandler { return &FacultyHandler{svc: svc} }

func (h *FacultyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFacultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *FacultyHandler) List(w http.ResponseWriter, r *http.Request) {
	faculty, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, faculty)
}

func (h *FacultyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateFacultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *FacultyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "faculty member deleted"})
}

func (h *FacultyHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "columnName")
	modified, err := h.svc.DeleteColumn(r.Context(), column)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{
		Message:  fmt.Sprintf("column %s removed", column),
		Modified: modified,
	})
}

func (h *FacultyHandler) ClearDefaultColumn(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "columnName")
	modified, err := h.svc.ClearDefaultColumn(r.Context(), column)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{
		Message:  fmt.Sprintf("column %s cleared", column),
		Modified: modified,
	})
}
