package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/pkg/id"
	"github.com/deptboard-api/internal/pkg/token"
	"github.com/deptboard-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetPassword(ctx context.Context, userID, passwordHash string) error
}

type resetStore interface {
	Put(ctx context.Context, r *domain.PasswordReset) error
	Get(ctx context.Context, resetToken string) (*domain.PasswordReset, error)
	Delete(ctx context.Context, resetToken string) error
}

type tokenSigner interface {
	Sign(userID, role, email, name string) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

// LoginResult carries the signed token plus the profile the client renders
// after login.
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type service struct {
	users       userStore
	resets      resetStore
	signer      tokenSigner
	mail        mailer
	frontendURL string
	logger      *slog.Logger
}

func NewService(users userStore, resets resetStore, signer tokenSigner, mail mailer, frontendURL string, logger *slog.Logger) Service {
	return &service{
		users:       users,
		resets:      resets,
		signer:      signer,
		mail:        mail,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Register creates an account. Unknown roles default to student rather than
// failing: self-service signup must not guess at the staff vocabulary.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	role, known := domain.NormalizeRole(req.Role)
	if !known {
		role = domain.RoleStudent
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Department:   req.Department,
		Year:         req.Year,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error so the endpoint cannot be used to probe for accounts.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	signed, err := s.signer.Sign(user.UserID, user.Role, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: signed, User: user}, nil
}

// ForgotPassword issues a one-hour reset token and mails a reset link.
// An unknown email returns success without sending anything, for the same
// account-probing reason as Login.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	resetToken, err := token.NewResetToken()
	if err != nil {
		return err
	}
	reset := &domain.PasswordReset{
		Token:     resetToken,
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(resetTokenTTL).Unix(),
	}
	if err := s.resets.Put(ctx, reset); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken)
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in one hour.\n\n%s\n", user.Name, link)
	if err := s.mail.SendEmail(user.Email, "Password reset", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a token and stores the new password hash. The token
// record is deleted on success so it cannot be replayed; DynamoDB TTL mops up
// tokens that were never used.
func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 72 {
		return fmt.Errorf("password must be 8-72 characters: %w", domain.ErrBadRequest)
	}

	reset, err := s.resets.Get(ctx, resetToken)
	if err != nil {
		return fmt.Errorf("invalid reset token: %w", domain.ErrUnauthorized)
	}
	if time.Now().Unix() > reset.ExpiresAt {
		_ = s.resets.Delete(ctx, resetToken)
		return fmt.Errorf("reset token expired: %w", domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, reset.UserID, string(hash)); err != nil {
		return err
	}
	return s.resets.Delete(ctx, resetToken)
}
