package handler

import (
	"encoding/json"
	"net/http"

	"github.com/deptboard-api/internal/application/certificate"
	s3infra "github.com/deptboard-api/internal/infrastructure/s3"
	"github.com/deptboard-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// CertificateHandler handles the upload-and-approval workflow.
type CertificateHandler struct {
	svc            certificate.Service
	maxUploadBytes int64
}

func NewCertificateHandler(svc certificate.Service, maxUploadBytes int64) *CertificateHandler {
	return &CertificateHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *CertificateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	contentType := s3infra.DetectContentType(header.Filename)
	if !allowedUploadTypes[contentType] {
		writeError(w, http.StatusBadRequest, "only PDF, JPEG and PNG files are accepted")
		return
	}

	// Tokens minted before the name claim existed carry only the email;
	// fall back so their notifications stay attributable.
	uploader := claims.Name
	if uploader == "" {
		uploader = claims.Email
	}

	cert, err := h.svc.Upload(r.Context(), certificate.UploadInput{
		StudentID:   claims.UserID,
		StudentName: uploader,
		Title:       r.FormValue("title"),
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cert)
}

func (h *CertificateHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	certs, err := h.svc.ListMine(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

func (h *CertificateHandler) ListReviewQueue(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	certs, err := h.svc.ListReviewQueue(r.Context(), claims.Role)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

func (h *CertificateHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cert, err := h.svc.SetStatus(r.Context(), claims.Role, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "certificate deleted"})
}
