package student

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
	"github.com/deptboard-api/internal/pkg/validate"
)

// coreAttrs maps a core column's API name to its DynamoDB attribute.
// Anything outside this map is a dynamic column living in extra_fields.
var coreAttrs = map[string]string{
	"name":       "name",
	"rollNo":     "roll_no",
	"department": "department",
	"year":       "year",
	"phoneNo":    "phone_no",
	"email":      "email",
}

type Service interface {
	Create(ctx context.Context, req domain.CreateStudentRequest) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error)
	Update(ctx context.Context, studentID string, req domain.UpdateStudentRequest) (*domain.Student, error)
	Delete(ctx context.Context, studentID string) error
	DeleteColumn(ctx context.Context, column string) (int, error)
	ClearDefaultColumn(ctx context.Context, column string) (int, error)
}

type studentStore interface {
	Create(ctx context.Context, s *domain.Student) error
	Get(ctx context.Context, studentID string) (*domain.Student, error)
	GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error)
	Scan(ctx context.Context) ([]domain.Student, error)
	UpdateFields(ctx context.Context, studentID string, updates map[string]interface{}) error
	Rekey(ctx context.Context, studentID, oldRollNo, newRollNo string, updates map[string]interface{}) error
	Delete(ctx context.Context, studentID, rollNo string) error
	ClearColumn(ctx context.Context, attr string) (int, error)
	RemoveExtraColumn(ctx context.Context, column string) (int, error)
}

type service struct {
	repo studentStore
}

func NewService(repo studentStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req domain.CreateStudentRequest) (*domain.Student, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	extra := req.ExtraFields
	if extra == nil {
		extra = make(map[string]string)
	}
	now := time.Now().UTC()
	rec := &domain.Student{
		StudentID:   id.New(),
		Name:        req.Name,
		RollNo:      req.RollNo,
		Department:  req.Department,
		Year:        req.Year,
		PhoneNo:     req.PhoneNo,
		Email:       req.Email,
		ExtraFields: extra,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the full roster, newest first. ULIDs break ties for records
// created within the same timestamp, keeping the order stable.
func (s *service) List(ctx context.Context) ([]domain.Student, error) {
	students, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		if !students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].CreatedAt.After(students[j].CreatedAt)
		}
		return students[i].StudentID > students[j].StudentID
	})
	return students, nil
}

func (s *service) GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error) {
	return s.repo.GetByRollNo(ctx, rollNo)
}

// Update applies a partial update. Supplied core fields replace the stored
// value field-by-field; extraFields entries are merged into the stored map,
// never replacing it wholesale.
func (s *service) Update(ctx context.Context, studentID string, req domain.UpdateStudentRequest) (*domain.Student, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	existing, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setCore := func(apiName string, v *string) {
		if v != nil {
			updates[coreAttrs[apiName]] = *v
		}
	}
	setCore("name", req.Name)
	setCore("department", req.Department)
	setCore("year", req.Year)
	setCore("phoneNo", req.PhoneNo)
	setCore("email", req.Email)
	for k, v := range req.ExtraFields {
		updates["extra_fields."+k] = v
	}

	if req.RollNo != nil && *req.RollNo != existing.RollNo {
		// The natural key changes: the guard move and the record rewrite
		// commit in one transaction, so a conflicting roll number aborts the
		// whole update and a failed write never releases the old guard.
		updates[coreAttrs["rollNo"]] = *req.RollNo
		updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		if err := s.repo.Rekey(ctx, studentID, existing.RollNo, *req.RollNo, updates); err != nil {
			return nil, err
		}
		return s.repo.Get(ctx, studentID)
	}

	if len(updates) == 0 {
		return existing, nil
	}
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.UpdateFields(ctx, studentID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, studentID)
}

func (s *service) Delete(ctx context.Context, studentID string) error {
	existing, err := s.repo.Get(ctx, studentID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, studentID, existing.RollNo)
}

// DeleteColumn removes a column across the whole collection. Core columns
// cannot be structurally removed — they are blanked instead, which keeps the
// fixed schema intact for sorting and validation. Dynamic columns are
// removed from every record that carries them. Reports domain.ErrNotFound
// when nothing was modified (the column never existed).
func (s *service) DeleteColumn(ctx context.Context, column string) (int, error) {
	if column == "" {
		return 0, fmt.Errorf("column name required: %w", domain.ErrBadRequest)
	}
	var (
		modified int
		err      error
	)
	if attr, isCore := coreAttrs[column]; isCore {
		modified, err = s.repo.ClearColumn(ctx, attr)
	} else {
		modified, err = s.repo.RemoveExtraColumn(ctx, column)
	}
	if err != nil {
		return modified, err
	}
	if modified == 0 {
		return 0, fmt.Errorf("column %s: %w", column, domain.ErrNotFound)
	}
	return modified, nil
}

// ClearDefaultColumn blanks one core column on every record. Unlike
// DeleteColumn it rejects dynamic column names outright.
func (s *service) ClearDefaultColumn(ctx context.Context, column string) (int, error) {
	attr, isCore := coreAttrs[column]
	if !isCore {
		return 0, fmt.Errorf("%s is not a default column: %w", column, domain.ErrBadRequest)
	}
	return s.repo.ClearColumn(ctx, attr)
}
