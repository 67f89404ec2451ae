package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/crypto"
	apperrors "github.com/universe-app/universe/pkg/errors"
	"github.com/universe-app/universe/pkg/logger"
	"github.com/universe-app/universe/pkg/mail"
	"github.com/universe-app/universe/pkg/metrics"
)

var (
	// ErrNotPreapproved is returned when an email/USN pair is not on the admission list.
	ErrNotPreapproved = apperrors.New("NOT_PREAPPROVED", "You are not pre-approved to join", http.StatusForbidden)
	// ErrInvalidResetToken marks an unknown or expired password reset token.
	ErrInvalidResetToken = apperrors.New("INVALID_RESET_TOKEN", "Invalid or expired reset token", http.StatusBadRequest)
)

// AuthConfig tunes the auth service.
type AuthConfig struct {
	AdminEmail string
	ResetTTL   time.Duration
	BaseURL    string
	Clock      func() time.Time
}

// AuthService covers admission checks and password recovery. Login and
// session issuance live in UserService and auth.SessionService.
type AuthService struct {
	db         *gorm.DB
	sessions   *iauth.SessionService
	mailer     mail.Mailer
	adminEmail string
	resetTTL   time.Duration
	baseURL    string
	now        func() time.Time
	log        *zap.Logger
}

// NewAuthService constructs an AuthService. The mailer and session service
// may be nil in tests.
func NewAuthService(db *gorm.DB, sessions *iauth.SessionService, mailer mail.Mailer, cfg AuthConfig) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}

	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		db:         db,
		sessions:   sessions,
		mailer:     mailer,
		adminEmail: normaliseEmail(cfg.AdminEmail),
		resetTTL:   ttl,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		now:        now,
		log:        logger.WithModule("auth"),
	}, nil
}

// CheckPreapproved verifies an email/USN pair against the admission list.
// The configured admin email bypasses the check.
func (s *AuthService) CheckPreapproved(ctx context.Context, email, usn string) error {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	usn = strings.ToUpper(strings.TrimSpace(usn))
	if email == "" {
		return apperrors.NewBadRequest("Email is required")
	}

	if s.adminEmail != "" && email == s.adminEmail {
		return nil
	}
	if usn == "" {
		return apperrors.NewBadRequest("USN is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.PreApprovedStudent{}).
		Where("email = ? AND usn = ?", email, usn).
		Count(&count).Error; err != nil {
		return fmt.Errorf("auth service: check preapproved: %w", err)
	}
	if count == 0 {
		return ErrNotPreapproved
	}
	return nil
}

// ForgotPassword stores a reset token and emails the reset link. The caller
// always receives success so account existence is not revealed.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	if email == "" {
		return apperrors.NewBadRequest("Email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth service: load user: %w", err)
	}

	token, err := crypto.GenerateToken(32)
	if err != nil {
		return fmt.Errorf("auth service: generate reset token: %w", err)
	}

	expiry := s.now().Add(s.resetTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		return fmt.Errorf("auth service: store reset token: %w", err)
	}

	s.emailResetLink(ctx, user.Email, token)
	return nil
}

// ResetPassword consumes a valid reset token, replaces the password, and
// revokes all existing sessions.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx = ensureContext(ctx)
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return apperrors.NewBadRequest("Token and new password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("auth service: load user: %w", err)
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(s.now()) {
		return ErrInvalidResetToken
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password":           hash,
		"reset_token":        "",
		"reset_token_expiry": nil,
	}).Error; err != nil {
		return fmt.Errorf("auth service: update password: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUserSessions(user.ID); err != nil {
			s.log.Warn("revoke sessions after reset failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *AuthService) emailResetLink(ctx context.Context, to, token string) {
	if s.mailer == nil {
		s.log.Warn("mailer not configured, skipping reset email", zap.String("email", to))
		return
	}

	link := s.baseURL + "/reset-password?token=" + token
	msg := mail.Message{
		To:      []string{to},
		Subject: "Reset your UniVerse password",
		Body: fmt.Sprintf(
			"A password reset was requested for your account. Use the link below within %d minutes.\r\n\r\n%s",
			int(s.resetTTL.Minutes()), link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		metrics.EmailsSent.WithLabelValues("reset", "error").Inc()
		s.log.Warn("reset email failed", zap.String("email", to), zap.Error(err))
		return
	}
	metrics.EmailsSent.WithLabelValues("reset", "ok").Inc()
}
