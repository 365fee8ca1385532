package student

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, s *domain.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStore) Get(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *mockStore) GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error) {
	args := m.Called(ctx, rollNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *mockStore) Scan(ctx context.Context) ([]domain.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *mockStore) UpdateFields(ctx context.Context, studentID string, updates map[string]interface{}) error {
	return m.Called(ctx, studentID, updates).Error(0)
}

func (m *mockStore) Rekey(ctx context.Context, studentID, oldRollNo, newRollNo string, updates map[string]interface{}) error {
	return m.Called(ctx, studentID, oldRollNo, newRollNo, updates).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, studentID, rollNo string) error {
	return m.Called(ctx, studentID, rollNo).Error(0)
}

func (m *mockStore) ClearColumn(ctx context.Context, attr string) (int, error) {
	args := m.Called(ctx, attr)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) RemoveExtraColumn(ctx context.Context, column string) (int, error) {
	args := m.Called(ctx, column)
	return args.Int(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestCreate_FillsIdentityAndDefaults(t *testing.T) {
	store := new(mockStore)
	store.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Student) bool {
		return s.StudentID != "" && s.ExtraFields != nil && !s.CreatedAt.IsZero()
	})).Return(nil)

	svc := NewService(store)
	rec, err := svc.Create(context.Background(), domain.CreateStudentRequest{
		Name:       "Asha",
		RollNo:     "42",
		Department: "CSE",
		Year:       "3",
		Email:      "asha@college.edu",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.StudentID)
	assert.NotNil(t, rec.ExtraFields)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	store.AssertExpectations(t)
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := NewService(new(mockStore))

	_, err := svc.Create(context.Background(), domain.CreateStudentRequest{
		Name:  "Asha",
		Email: "not-an-email",
	})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_DuplicateRollNo(t *testing.T) {
	store := new(mockStore)
	store.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := NewService(store)
	_, err := svc.Create(context.Background(), domain.CreateStudentRequest{
		Name:       "Asha",
		RollNo:     "42",
		Department: "CSE",
		Year:       "3",
		Email:      "asha@college.edu",
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestList_NewestFirst(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	store := new(mockStore)
	store.On("Scan", mock.Anything).Return([]domain.Student{
		{StudentID: "a", CreatedAt: older},
		{StudentID: "b", CreatedAt: newer},
	}, nil)

	svc := NewService(store)
	out, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].StudentID)
	assert.Equal(t, "a", out[1].StudentID)
}

func TestUpdate_MergesExtraFields(t *testing.T) {
	store := new(mockStore)
	existing := &domain.Student{StudentID: "s1", RollNo: "42", ExtraFields: map[string]string{"club": "chess"}}
	store.On("Get", mock.Anything, "s1").Return(existing, nil)
	store.On("UpdateFields", mock.Anything, "s1", mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasUpdatedAt := u["updated_at"]
		return u["name"] == "Asha R" && u["extra_fields.hostel"] == "B" && hasUpdatedAt
	})).Return(nil)

	svc := NewService(store)
	_, err := svc.Update(context.Background(), "s1", domain.UpdateStudentRequest{
		Name:        strPtr("Asha R"),
		ExtraFields: map[string]string{"hostel": "B"},
	})
	require.NoError(t, err)
	store.AssertNotCalled(t, "Rekey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestUpdate_RollNoChangeIsOneAtomicWrite(t *testing.T) {
	store := new(mockStore)
	existing := &domain.Student{StudentID: "s1", RollNo: "42"}
	store.On("Get", mock.Anything, "s1").Return(existing, nil)
	store.On("Rekey", mock.Anything, "s1", "42", "43", mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasUpdatedAt := u["updated_at"]
		return u["roll_no"] == "43" && u["name"] == "Asha R" && hasUpdatedAt
	})).Return(nil)

	svc := NewService(store)
	_, err := svc.Update(context.Background(), "s1", domain.UpdateStudentRequest{
		Name:   strPtr("Asha R"),
		RollNo: strPtr("43"),
	})
	require.NoError(t, err)
	// The rekey transaction carries the whole update; there is no separate
	// field write that could fail after the old roll number is released.
	store.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestUpdate_RollNoTakenAbortsBeforeWrite(t *testing.T) {
	store := new(mockStore)
	existing := &domain.Student{StudentID: "s1", RollNo: "42"}
	store.On("Get", mock.Anything, "s1").Return(existing, nil)
	store.On("Rekey", mock.Anything, "s1", "42", "43", mock.Anything).Return(domain.ErrConflict)

	svc := NewService(store)
	_, err := svc.Update(context.Background(), "s1", domain.UpdateStudentRequest{RollNo: strPtr("43")})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	store.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NoFieldsIsANoOp(t *testing.T) {
	store := new(mockStore)
	existing := &domain.Student{StudentID: "s1", RollNo: "42"}
	store.On("Get", mock.Anything, "s1").Return(existing, nil)

	svc := NewService(store)
	out, err := svc.Update(context.Background(), "s1", domain.UpdateStudentRequest{})
	require.NoError(t, err)
	assert.Equal(t, existing, out)
	store.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_UnknownStudent(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := NewService(store)
	err := svc.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteColumn_CoreColumnIsBlanked(t *testing.T) {
	store := new(mockStore)
	store.On("ClearColumn", mock.Anything, "phone_no").Return(3, nil)

	svc := NewService(store)
	n, err := svc.DeleteColumn(context.Background(), "phoneNo")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	store.AssertNotCalled(t, "RemoveExtraColumn", mock.Anything, mock.Anything)
}

func TestDeleteColumn_DynamicColumnIsRemoved(t *testing.T) {
	store := new(mockStore)
	store.On("RemoveExtraColumn", mock.Anything, "club").Return(2, nil)

	svc := NewService(store)
	n, err := svc.DeleteColumn(context.Background(), "club")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeleteColumn_NothingModified(t *testing.T) {
	store := new(mockStore)
	store.On("RemoveExtraColumn", mock.Anything, "ghost").Return(0, nil)

	svc := NewService(store)
	_, err := svc.DeleteColumn(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClearDefaultColumn_RejectsDynamicName(t *testing.T) {
	svc := NewService(new(mockStore))
	_, err := svc.ClearDefaultColumn(context.Background(), "club")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
