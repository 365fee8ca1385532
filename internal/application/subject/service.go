package subject

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
	"github.com/deptboard-api/internal/pkg/validate"
)

type subjectStore interface {
	Create(ctx context.Context, sub *domain.Subject) error
	Get(ctx context.Context, subjectID string) (*domain.Subject, error)
	ListByYear(ctx context.Context, year string) ([]domain.Subject, error)
	SetMaterialLink(ctx context.Context, subjectID, link string) error
	Delete(ctx context.Context, subjectID, subjectCode string) error
}

type Service interface {
	Create(ctx context.Context, req domain.CreateSubjectRequest) (*domain.Subject, error)
	ListByYear(ctx context.Context, year string) ([]domain.Subject, error)
	AttachMaterial(ctx context.Context, subjectID, link string) (*domain.Subject, error)
	Delete(ctx context.Context, subjectID string) error
}

type service struct {
	repo subjectStore
}

func NewService(repo subjectStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req domain.CreateSubjectRequest) (*domain.Subject, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	sub := &domain.Subject{
		SubjectID:   id.New(),
		SubjectName: req.SubjectName,
		SubjectCode: req.SubjectCode,
		Department:  req.Department,
		Year:        req.Year,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListByYear returns a year's subjects sorted by code, the order timetables
// use. An empty year means all years.
func (s *service) ListByYear(ctx context.Context, year string) ([]domain.Subject, error) {
	subjects, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].SubjectCode < subjects[j].SubjectCode
	})
	return subjects, nil
}

func (s *service) AttachMaterial(ctx context.Context, subjectID, link string) (*domain.Subject, error) {
	if link == "" {
		return nil, fmt.Errorf("material link required: %w", domain.ErrBadRequest)
	}
	if err := s.repo.SetMaterialLink(ctx, subjectID, link); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, subjectID)
}

func (s *service) Delete(ctx context.Context, subjectID string) error {
	sub, err := s.repo.Get(ctx, subjectID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, subjectID, sub.SubjectCode)
}
