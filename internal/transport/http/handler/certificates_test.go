package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deptboard-api/internal/application/certificate"
	"github.com/deptboard-api/internal/domain"
	jwtinfra "github.com/deptboard-api/internal/infrastructure/jwt"
	"github.com/deptboard-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCertSvc struct{ mock.Mock }

func (m *mockCertSvc) Upload(ctx context.Context, in certificate.UploadInput) (*domain.Certificate, error) {
	args := m.Called(ctx, in)
	if c, _ := args.Get(0).(*domain.Certificate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCertSvc) ListMine(ctx context.Context, studentID string) ([]domain.Certificate, error) {
	args := m.Called(ctx, studentID)
	if c, _ := args.Get(0).([]domain.Certificate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCertSvc) ListReviewQueue(ctx context.Context, reviewerRole string) ([]domain.Certificate, error) {
	args := m.Called(ctx, reviewerRole)
	if c, _ := args.Get(0).([]domain.Certificate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCertSvc) SetStatus(ctx context.Context, reviewerRole, certificateID, status string) (*domain.Certificate, error) {
	args := m.Called(ctx, reviewerRole, certificateID, status)
	if c, _ := args.Get(0).(*domain.Certificate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCertSvc) Delete(ctx context.Context, ownerID, certificateID string) error {
	return m.Called(ctx, ownerID, certificateID).Error(0)
}

func multipartUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "NPTEL Go"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("file-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	body, contentType := multipartUpload(t, filename)
	req := httptest.NewRequest(http.MethodPost, "/certificates/upload", body)
	req.Header.Set("Content-Type", contentType)
	claims := &jwtinfra.Claims{UserID: "s1", Role: domain.RoleStudent, Email: "asha@college.edu", Name: "Asha"}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestCertificateUpload_AcceptsPDF(t *testing.T) {
	svc := new(mockCertSvc)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in certificate.UploadInput) bool {
		return in.StudentID == "s1" && in.ContentType == "application/pdf" && in.Title == "NPTEL Go"
	})).Return(&domain.Certificate{CertificateID: "c1", Status: domain.CertStatusPending}, nil)

	rr := httptest.NewRecorder()
	NewCertificateHandler(svc, 5<<20).Upload(rr, uploadRequest(t, "cert.pdf"))

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestCertificateUpload_UsesDisplayName(t *testing.T) {
	svc := new(mockCertSvc)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in certificate.UploadInput) bool {
		return in.StudentName == "Asha"
	})).Return(&domain.Certificate{CertificateID: "c1"}, nil)

	rr := httptest.NewRecorder()
	NewCertificateHandler(svc, 5<<20).Upload(rr, uploadRequest(t, "cert.pdf"))

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestCertificateUpload_FallsBackToEmailWithoutName(t *testing.T) {
	svc := new(mockCertSvc)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in certificate.UploadInput) bool {
		return in.StudentName == "asha@college.edu"
	})).Return(&domain.Certificate{CertificateID: "c1"}, nil)

	body, contentType := multipartUpload(t, "cert.pdf")
	req := httptest.NewRequest(http.MethodPost, "/certificates/upload", body)
	req.Header.Set("Content-Type", contentType)
	claims := &jwtinfra.Claims{UserID: "s1", Role: domain.RoleStudent, Email: "asha@college.edu"}
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))

	rr := httptest.NewRecorder()
	NewCertificateHandler(svc, 5<<20).Upload(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestCertificateUpload_RejectsUnknownType(t *testing.T) {
	svc := new(mockCertSvc)
	rr := httptest.NewRecorder()
	NewCertificateHandler(svc, 5<<20).Upload(rr, uploadRequest(t, "cert.exe"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCertificateUpload_NoClaims(t *testing.T) {
	body, contentType := multipartUpload(t, "cert.pdf")
	req := httptest.NewRequest(http.MethodPost, "/certificates/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	NewCertificateHandler(new(mockCertSvc), 5<<20).Upload(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCertificateSetStatus_ForbiddenMapsTo403(t *testing.T) {
	svc := new(mockCertSvc)
	svc.On("SetStatus", mock.Anything, "student", mock.Anything, "approved").
		Return(nil, domain.ErrForbidden)

	req := httptest.NewRequest(http.MethodPatch, "/certificates/admin/c1/status",
		bytes.NewReader([]byte(`{"status":"approved"}`)))
	claims := &jwtinfra.Claims{UserID: "s1", Role: "student"}
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))

	rr := httptest.NewRecorder()
	NewCertificateHandler(svc, 5<<20).SetStatus(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
