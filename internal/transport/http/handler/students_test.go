package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deptboard-api/internal/application/importer"
	"github.com/deptboard-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStudentSvc struct{ mock.Mock }

func (m *mockStudentSvc) Create(ctx context.Context, req domain.CreateStudentRequest) (*domain.Student, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentSvc) List(ctx context.Context) ([]domain.Student, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).([]domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentSvc) GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error) {
	args := m.Called(ctx, rollNo)
	if s, _ := args.Get(0).(*domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentSvc) Update(ctx context.Context, studentID string, req domain.UpdateStudentRequest) (*domain.Student, error) {
	args := m.Called(ctx, studentID, req)
	if s, _ := args.Get(0).(*domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentSvc) Delete(ctx context.Context, studentID string) error {
	return m.Called(ctx, studentID).Error(0)
}

func (m *mockStudentSvc) DeleteColumn(ctx context.Context, column string) (int, error) {
	args := m.Called(ctx, column)
	return args.Int(0), args.Error(1)
}

func (m *mockStudentSvc) ClearDefaultColumn(ctx context.Context, column string) (int, error) {
	args := m.Called(ctx, column)
	return args.Int(0), args.Error(1)
}

type mockImporterSvc struct{ mock.Mock }

func (m *mockImporterSvc) ImportSheet(ctx context.Context, sheetURL, sheetName string) (*importer.Result, error) {
	args := m.Called(ctx, sheetURL, sheetName)
	if r, _ := args.Get(0).(*importer.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func newStudentRouter(svc *mockStudentSvc, imp *mockImporterSvc) http.Handler {
	h := NewStudentHandler(svc, imp)
	r := chi.NewRouter()
	r.Get("/students", h.List)
	r.Post("/students", h.Create)
	r.Put("/students/{id}", h.Update)
	r.Delete("/students/{id}", h.Delete)
	r.Delete("/students/column/{columnName}", h.DeleteColumn)
	r.Put("/students/column/default/{columnName}", h.ClearDefaultColumn)
	r.Post("/students/import", h.Import)
	return r
}

func TestStudentCreate_Created(t *testing.T) {
	svc := new(mockStudentSvc)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req domain.CreateStudentRequest) bool {
		return req.RollNo == "42"
	})).Return(&domain.Student{StudentID: "s1", RollNo: "42"}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Asha", "rollNo": "42", "department": "CSE", "year": "3",
		"email": "asha@college.edu",
	})
	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newStudentRouter(svc, new(mockImporterSvc)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var out domain.Student
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "s1", out.StudentID)
}

func TestStudentCreate_ConflictMapsTo409(t *testing.T) {
	svc := new(mockStudentSvc)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	body, _ := json.Marshal(map[string]string{"rollNo": "42"})
	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newStudentRouter(svc, new(mockImporterSvc)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestStudentCreate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader([]byte("{nope")))
	rr := httptest.NewRecorder()
	newStudentRouter(new(mockStudentSvc), new(mockImporterSvc)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStudentUpdate_NotFoundMapsTo404(t *testing.T) {
	svc := new(mockStudentSvc)
	svc.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodPut, "/students/missing", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	newStudentRouter(svc, new(mockImporterSvc)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStudentDeleteColumn_ReportsModifiedCount(t *testing.T) {
	svc := new(mockStudentSvc)
	svc.On("DeleteColumn", mock.Anything, "club").Return(3, nil)

	req := httptest.NewRequest(http.MethodDelete, "/students/column/club", nil)
	rr := httptest.NewRecorder()
	newStudentRouter(svc, new(mockImporterSvc)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out CountEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Modified)
}

func TestStudentClearDefaultColumn_BadNameMapsTo400(t *testing.T) {
	svc := new(mockStudentSvc)
	svc.On("ClearDefaultColumn", mock.Anything, "club").Return(0, domain.ErrBadRequest)

	req := httptest.NewRequest(http.MethodPut, "/students/column/default/club", nil)
	rr := httptest.NewRecorder()
	newStudentRouter(svc, new(mockImporterSvc)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStudentImport_ReturnsCounts(t *testing.T) {
	imp := new(mockImporterSvc)
	imp.On("ImportSheet", mock.Anything, "https://docs.google.com/spreadsheets/d/abc/edit", "Members").
		Return(&importer.Result{Created: 2, Updated: 1, Skipped: 1}, nil)

	body, _ := json.Marshal(map[string]string{
		"sheetUrl":  "https://docs.google.com/spreadsheets/d/abc/edit",
		"sheetName": "Members",
	})
	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newStudentRouter(new(mockStudentSvc), imp).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out importer.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Created)
}

func TestStudentImport_MissingURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/students/import", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	newStudentRouter(new(mockStudentSvc), new(mockImporterSvc)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
