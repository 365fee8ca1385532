package certificate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

type certStore interface {
	Put(ctx context.Context, c *domain.Certificate) error
	Get(ctx context.Context, certificateID string) (*domain.Certificate, error)
	ListByOwner(ctx context.Context, studentID string) ([]domain.Certificate, error)
	ListNotRejected(ctx context.Context) ([]domain.Certificate, error)
	SetStatus(ctx context.Context, certificateID, status string) error
	Delete(ctx context.Context, certificateID string) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type notifier interface {
	NotifyReviewers(ctx context.Context, message, certificateID string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// UploadInput is the parsed multipart payload of an upload request.
type UploadInput struct {
	StudentID   string
	StudentName string
	Title       string
	Filename    string
	ContentType string
	Body        io.Reader
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*domain.Certificate, error)
	ListMine(ctx context.Context, studentID string) ([]domain.Certificate, error)
	ListReviewQueue(ctx context.Context, reviewerRole string) ([]domain.Certificate, error)
	SetStatus(ctx context.Context, reviewerRole, certificateID, status string) (*domain.Certificate, error)
	Delete(ctx context.Context, ownerID, certificateID string) error
}

type service struct {
	certs  certStore
	blobs  blobStore
	notify notifier
	events eventPublisher
	logger *slog.Logger
}

func NewService(certs certStore, blobs blobStore, notify notifier, events eventPublisher, logger *slog.Logger) Service {
	return &service{certs: certs, blobs: blobs, notify: notify, events: events, logger: logger}
}

// Upload stores the blob, records the certificate as pending and fans a
// notification out to reviewer roles. Notification failure does not undo the
// upload; the review queue itself is the source of truth.
func (s *service) Upload(ctx context.Context, in UploadInput) (*domain.Certificate, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title required: %w", domain.ErrBadRequest)
	}

	certID := id.New()
	key := fmt.Sprintf("certificates/%s/%s-%s", in.StudentID, certID, in.Filename)
	if _, err := s.blobs.Upload(ctx, key, in.Body, in.ContentType); err != nil {
		return nil, err
	}
	fileURL, err := s.blobs.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return nil, err
	}

	cert := &domain.Certificate{
		CertificateID: certID,
		StudentID:     in.StudentID,
		Title:         in.Title,
		Object:        key,
		FileURL:       fileURL,
		Status:        domain.CertStatusPending,
		UploadedAt:    time.Now().UTC(),
	}
	if err := s.certs.Put(ctx, cert); err != nil {
		// Orphaned blob, best effort cleanup.
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}

	msg := fmt.Sprintf("%s uploaded certificate %q", in.StudentName, in.Title)
	if err := s.notify.NotifyReviewers(ctx, msg, certID); err != nil {
		s.logger.Error("notify reviewers", "certificate_id", certID, "error", err)
	}
	if err := s.events.Publish(ctx, "certificate.uploaded", msg); err != nil {
		s.logger.Error("publish upload event", "certificate_id", certID, "error", err)
	}
	return cert, nil
}

// ListMine returns the caller's certificates, newest first, with fresh
// presigned URLs.
func (s *service) ListMine(ctx context.Context, studentID string) ([]domain.Certificate, error) {
	certs, err := s.certs.ListByOwner(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.refreshURLs(ctx, certs), nil
}

// ListReviewQueue returns pending and approved certificates for reviewers.
// Rejected ones drop out of the queue.
func (s *service) ListReviewQueue(ctx context.Context, reviewerRole string) ([]domain.Certificate, error) {
	if !domain.IsReviewer(reviewerRole) {
		return nil, fmt.Errorf("role %s cannot review certificates: %w", reviewerRole, domain.ErrForbidden)
	}
	certs, err := s.certs.ListNotRejected(ctx)
	if err != nil {
		return nil, err
	}
	return s.refreshURLs(ctx, certs), nil
}

// SetStatus transitions a certificate. Any valid status can be set from any
// current status, so a mis-click is reversible; re-applying the current
// status is a no-op that still succeeds.
func (s *service) SetStatus(ctx context.Context, reviewerRole, certificateID, status string) (*domain.Certificate, error) {
	if !domain.IsReviewer(reviewerRole) {
		return nil, fmt.Errorf("role %s cannot review certificates: %w", reviewerRole, domain.ErrForbidden)
	}
	if !domain.ValidCertStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrBadRequest)
	}

	cert, err := s.certs.Get(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if cert.Status != status {
		if err := s.certs.SetStatus(ctx, certificateID, status); err != nil {
			return nil, err
		}
		cert.Status = status
	}
	return cert, nil
}

// Delete removes one of the caller's own certificates: blob first, then the
// record. A blob-release failure aborts the delete so the record keeps
// pointing at the still-existing object.
func (s *service) Delete(ctx context.Context, ownerID, certificateID string) error {
	cert, err := s.certs.Get(ctx, certificateID)
	if err != nil {
		return err
	}
	if cert.StudentID != ownerID {
		return fmt.Errorf("certificate %s is not yours: %w", certificateID, domain.ErrForbidden)
	}

	exists, err := s.blobs.Exists(ctx, cert.Object)
	if err != nil {
		return err
	}
	if exists {
		if err := s.blobs.Delete(ctx, cert.Object); err != nil {
			return fmt.Errorf("release certificate blob: %w", err)
		}
	}
	return s.certs.Delete(ctx, certificateID)
}

func (s *service) refreshURLs(ctx context.Context, certs []domain.Certificate) []domain.Certificate {
	for i := range certs {
		url, err := s.blobs.PresignedURL(ctx, certs[i].Object, presignTTL)
		if err != nil {
			s.logger.Error("presign certificate", "certificate_id", certs[i].CertificateID, "error", err)
			continue
		}
		certs[i].FileURL = url
	}
	return certs
}
