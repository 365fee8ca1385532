package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStudents struct {
	mock.Mock
}

func (m *mockStudents) Scan(ctx context.Context) ([]domain.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *mockStudents) GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error) {
	args := m.Called(ctx, rollNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *mockStudents) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockFaculty struct {
	mock.Mock
}

func (m *mockFaculty) Scan(ctx context.Context) ([]domain.Faculty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Faculty), args.Error(1)
}

func (m *mockFaculty) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockCertCounter struct {
	mock.Mock
}

func (m *mockCertCounter) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockSubjects struct {
	mock.Mock
}

func (m *mockSubjects) ListByYear(ctx context.Context, year string) ([]domain.Subject, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func newTestService(students *mockStudents, faculty *mockFaculty, certs *mockCertCounter, subjects *mockSubjects) Service {
	return NewService(students, faculty, certs, subjects)
}

func TestHandle_Greeting(t *testing.T) {
	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "Hello there")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Hello")
}

func TestHandle_Counts(t *testing.T) {
	students := new(mockStudents)
	students.On("Count", mock.Anything).Return(42, nil)

	svc := newTestService(students, new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "how many students are there?")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "42")
}

func TestHandle_RollLookup(t *testing.T) {
	students := new(mockStudents)
	students.On("GetByRollNo", mock.Anything, "42").Return(&domain.Student{
		Name: "Asha", RollNo: "42", Department: "CSE", Year: "3", Email: "asha@college.edu",
	}, nil)

	svc := newTestService(students, new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "show me roll no 42")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Asha")
}

func TestHandle_RollLookupUnknown(t *testing.T) {
	students := new(mockStudents)
	students.On("GetByRollNo", mock.Anything, "99").Return(nil, domain.ErrNotFound)

	svc := newTestService(students, new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "roll number 99")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "No student")
}

func TestHandle_SubjectsIsMultiTurn(t *testing.T) {
	subjects := new(mockSubjects)
	subjects.On("ListByYear", mock.Anything, "3").Return([]domain.Subject{
		{SubjectName: "Operating Systems", SubjectCode: "CS301", MaterialLink: "https://drive/os"},
	}, nil)

	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), subjects)

	reply, err := svc.Handle(context.Background(), "u1", "show me the subjects")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Which year")

	reply, err = svc.Handle(context.Background(), "u1", "3rd year")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Operating Systems")
	assert.Contains(t, reply.Message, "https://drive/os")

	// State resets after the answer; the same message starts a fresh turn.
	reply, err = svc.Handle(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Hello")
}

func TestHandle_AwaitingYearReprompts(t *testing.T) {
	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), new(mockSubjects))

	_, err := svc.Handle(context.Background(), "u1", "materials please")
	require.NoError(t, err)

	reply, err := svc.Handle(context.Background(), "u1", "the good ones")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "between 1 and 4")
}

func TestHandle_AwaitingYearCancel(t *testing.T) {
	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), new(mockSubjects))

	_, err := svc.Handle(context.Background(), "u1", "subjects")
	require.NoError(t, err)

	reply, err := svc.Handle(context.Background(), "u1", "cancel")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "cancelled")

	reply, err = svc.Handle(context.Background(), "u1", "hi")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Hello")
}

func TestHandle_SessionsAreIndependent(t *testing.T) {
	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), new(mockSubjects))

	_, err := svc.Handle(context.Background(), "u1", "subjects")
	require.NoError(t, err)

	// A different session is not stuck awaiting a year.
	reply, err := svc.Handle(context.Background(), "u2", "hello")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Hello")
}

func TestHandle_StudentListingIsCapped(t *testing.T) {
	var roster []domain.Student
	for i := 0; i < 15; i++ {
		roster = append(roster, domain.Student{Name: "Student", RollNo: "r"})
	}
	students := new(mockStudents)
	students.On("Scan", mock.Anything).Return(roster, nil)

	svc := newTestService(students, new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "list students")
	require.NoError(t, err)
	assert.Equal(t, listingLimit, strings.Count(reply.Message, "- "))
	assert.Contains(t, reply.Message, "and 5 more")
}

func TestHandle_Fallback(t *testing.T) {
	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), new(mockSubjects))
	reply, err := svc.Handle(context.Background(), "u1", "what is the meaning of life")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "I can")
}

func TestHandle_ConcurrentMessagesSameSession(t *testing.T) {
	subjects := new(mockSubjects)
	subjects.On("ListByYear", mock.Anything, mock.Anything).Return([]domain.Subject{}, nil)

	svc := newTestService(new(mockStudents), new(mockFaculty), new(mockCertCounter), subjects)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Handle(context.Background(), "u1", "subjects")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Handle(context.Background(), "u1", "2")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The conversation still works afterwards.
	reply, err := svc.Handle(context.Background(), "u1", "cancel")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Message)
}

func TestSessionStore_StateIsCopiedNotShared(t *testing.T) {
	store := newSessionStore(time.Minute, time.Minute)
	assert.Equal(t, stateIdle, store.state("u1"))
	store.setState("u1", stateAwaitingYear)
	assert.Equal(t, stateAwaitingYear, store.state("u1"))

	// setState on an evicted session recreates it instead of dropping the write.
	store.mu.Lock()
	delete(store.sessions, "u1")
	store.mu.Unlock()
	store.setState("u1", stateAwaitingYear)
	assert.Equal(t, stateAwaitingYear, store.state("u1"))
}

func TestSessionStore_EvictsIdleSessions(t *testing.T) {
	store := newSessionStore(10*time.Millisecond, 5*time.Millisecond)
	store.setState("u1", stateAwaitingYear)

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, ok := store.sessions["u1"]
		return !ok
	}, time.Second, 10*time.Millisecond)
}
