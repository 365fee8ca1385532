package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deptboard-api/internal/application/importer"
	"github.com/deptboard-api/internal/application/student"
	"github.com/deptboard-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// StudentHandler handles roster CRUD, column lifecycle and sheet import.
type StudentHandler struct {
	svc      student.Service
	importer importer.Service
}

func NewStudentHandler(svc student.Service, imp importer.Service) *StudentHandler {
	return &StudentHandler{svc: svc, importer: imp}
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStudentRequest
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

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) GetByRollNo(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetByRollNo(r.Context(), chi.URLParam(r, "rollNo"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStudentRequest
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

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "student deleted"})
}

func (h *StudentHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
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

func (h *StudentHandler) ClearDefaultColumn(w http.ResponseWriter, r *http.Request) {
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

func (h *StudentHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SheetURL  string `json:"sheetUrl"`
		SheetName string `json:"sheetName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SheetURL == "" {
		writeError(w, http.StatusBadRequest, "sheetUrl required")
		return
	}
	res, err := h.importer.ImportSheet(r.Context(), req.SheetURL, req.SheetName)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
