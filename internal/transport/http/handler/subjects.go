package handler

import (
	"encoding/json"
	"net/http"

	"github.com/deptboard-api/internal/application/subject"
	"github.com/deptboard-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// SubjectHandler handles subject and material-link endpoints.
type SubjectHandler struct {
	svc subject.Service
}

func NewSubjectHandler(svc subject.Service) *SubjectHandler { return &SubjectHandler{svc: svc} }

func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.ListByYear(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *SubjectHandler) AttachMaterial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaterialLink string `json:"materialLink"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.AttachMaterial(r.Context(), chi.URLParam(r, "id"), req.MaterialLink)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subject deleted"})
}
