package faculty

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
	"github.com/deptboard-api/internal/pkg/validate"
)

var coreAttrs = map[string]string{
	"name":       "name",
	"email":      "email",
	"department": "department",
	"year":       "year",
}

type Service interface {
	Create(ctx context.Context, req domain.CreateFacultyRequest) (*domain.Faculty, error)
	List(ctx context.Context) ([]domain.Faculty, error)
	Update(ctx context.Context, facultyID string, req domain.UpdateFacultyRequest) (*domain.Faculty, error)
	Delete(ctx context.Context, facultyID string) error
	DeleteColumn(ctx context.Context, column string) (int, error)
	ClearDefaultColumn(ctx context.Context, column string) (int, error)
}

type facultyStore interface {
	Create(ctx context.Context, f *domain.Faculty) error
	Get(ctx context.Context, facultyID string) (*domain.Faculty, error)
	Scan(ctx context.Context) ([]domain.Faculty, error)
	UpdateFields(ctx context.Context, facultyID string, updates map[string]interface{}) error
	Rekey(ctx context.Context, facultyID, oldEmail, newEmail string, updates map[string]interface{}) error
	Delete(ctx context.Context, facultyID, email string) error
	ClearColumn(ctx context.Context, attr string) (int, error)
	RemoveExtraColumn(ctx context.Context, column string) (int, error)
}

type service struct {
	repo facultyStore
}

func NewService(repo facultyStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req domain.CreateFacultyRequest) (*domain.Faculty, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	extra := req.ExtraFields
	if extra == nil {
		extra = make(map[string]string)
	}
	now := time.Now().UTC()
	rec := &domain.Faculty{
		FacultyID:   id.New(),
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		Year:        req.Year,
		ExtraFields: extra,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) List(ctx context.Context) ([]domain.Faculty, error) {
	faculty, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(faculty, func(i, j int) bool {
		if !faculty[i].CreatedAt.Equal(faculty[j].CreatedAt) {
			return faculty[i].CreatedAt.After(faculty[j].CreatedAt)
		}
		return faculty[i].FacultyID > faculty[j].FacultyID
	})
	return faculty, nil
}

func (s *service) Update(ctx context.Context, facultyID string, req domain.UpdateFacultyRequest) (*domain.Faculty, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	existing, err := s.repo.Get(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	for k, v := range req.ExtraFields {
		updates["extra_fields."+k] = v
	}

	if req.Email != nil && *req.Email != existing.Email {
		// Guard move and record rewrite commit together, so a failed update
		// cannot leave the old email unguarded.
		updates["email"] = *req.Email
		updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		if err := s.repo.Rekey(ctx, facultyID, existing.Email, *req.Email, updates); err != nil {
			return nil, err
		}
		return s.repo.Get(ctx, facultyID)
	}

	if len(updates) == 0 {
		return existing, nil
	}
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.UpdateFields(ctx, facultyID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, facultyID)
}

func (s *service) Delete(ctx context.Context, facultyID string) error {
	existing, err := s.repo.Get(ctx, facultyID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, facultyID, existing.Email)
}

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

func (s *service) ClearDefaultColumn(ctx context.Context, column string) (int, error) {
	attr, isCore := coreAttrs[column]
	if !isCore {
		return 0, fmt.Errorf("%s is not a default column: %w", column, domain.ErrBadRequest)
	}
	return s.repo.ClearColumn(ctx, attr)
}
