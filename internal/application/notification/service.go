package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
)

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByRole(ctx context.Context, role string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type Service interface {
	NotifyReviewers(ctx context.Context, message, certificateID string) error
	ListForRole(ctx context.Context, role string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, role, notificationID string) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

// NotifyReviewers writes one notification record per reviewer role. Partial
// failure returns an error but leaves the already-written records in place;
// duplicates are harmless, silence is not.
func (s *service) NotifyReviewers(ctx context.Context, message, certificateID string) error {
	now := time.Now().UTC()
	for _, role := range domain.ReviewerRoles {
		n := &domain.Notification{
			NotificationID: id.New(),
			RecipientRole:  role,
			Message:        message,
			CertificateID:  certificateID,
			IsRead:         false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Put(ctx, n); err != nil {
			return fmt.Errorf("notify role %s: %w", role, err)
		}
	}
	return nil
}

// ListForRole returns the caller's role feed, newest first.
func (s *service) ListForRole(ctx context.Context, role string) ([]domain.Notification, error) {
	normalized, ok := domain.NormalizeRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	return s.repo.ListByRole(ctx, normalized)
}

// MarkAsRead flips one notification to read. Callers may only touch
// notifications addressed to their own role.
func (s *service) MarkAsRead(ctx context.Context, role, notificationID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	normalized, _ := domain.NormalizeRole(role)
	if n.RecipientRole != normalized {
		return fmt.Errorf("notification %s is not addressed to %s: %w", notificationID, role, domain.ErrForbidden)
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}
