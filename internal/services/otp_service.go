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

	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/crypto"
	apperrors "github.com/universe-app/universe/pkg/errors"
	"github.com/universe-app/universe/pkg/logger"
	"github.com/universe-app/universe/pkg/mail"
	"github.com/universe-app/universe/pkg/metrics"
)

// ErrInvalidOTP is returned when a verification code is wrong or expired.
var ErrInvalidOTP = apperrors.New("INVALID_OTP", "Invalid or expired verification code", http.StatusBadRequest)

// OTPConfig controls code generation.
type OTPConfig struct {
	Digits int
	TTL    time.Duration
	Clock  func() time.Time
}

// OTPService issues and verifies emailed signup codes. A new code replaces
// any previous codes for the same address, and a code is consumed on first
// successful verification.
type OTPService struct {
	db     *gorm.DB
	mailer mail.Mailer
	digits int
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewOTPService constructs an OTPService. The mailer may be nil in tests.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, cfg OTPConfig) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}

	digits := cfg.Digits
	if digits <= 0 {
		digits = 6
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &OTPService{
		db:     db,
		mailer: mailer,
		digits: digits,
		ttl:    ttl,
		now:    now,
		log:    logger.WithModule("otp"),
	}, nil
}

// Send generates a fresh code for the email, removes any earlier codes, and
// emails the new one.
func (s *OTPService) Send(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	if email == "" {
		return apperrors.NewBadRequest("Email is required")
	}

	code, err := crypto.GenerateNumericCode(s.digits)
	if err != nil {
		return fmt.Errorf("otp service: generate code: %w", err)
	}

	now := s.now()
	verification := models.EmailVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.EmailVerification{}).Error; err != nil {
			return err
		}
		return tx.Create(&verification).Error
	})
	if err != nil {
		return fmt.Errorf("otp service: store code: %w", err)
	}

	if err := s.email(ctx, email, code); err != nil {
		metrics.EmailsSent.WithLabelValues("otp", "error").Inc()
		return fmt.Errorf("otp service: send email: %w", err)
	}
	metrics.EmailsSent.WithLabelValues("otp", "ok").Inc()

	return nil
}

// Verify consumes a valid code. Expired codes for the address are purged as
// a side effect.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return apperrors.NewBadRequest("Email and code are required")
	}

	now := s.now()

	var verification models.EmailVerification
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		First(&verification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("otp service: load code: %w", err)
	}

	if verification.ExpiresAt.Before(now) {
		// Drop the stale row so re-sending starts clean.
		_ = s.db.WithContext(ctx).
			Where("email = ? AND expires_at < ?", email, now).
			Delete(&models.EmailVerification{}).Error
		return ErrInvalidOTP
	}

	if err := s.db.WithContext(ctx).Delete(&verification).Error; err != nil {
		return fmt.Errorf("otp service: consume code: %w", err)
	}

	return nil
}

func (s *OTPService) email(ctx context.Context, to, code string) error {
	if s.mailer == nil {
		s.log.Warn("mailer not configured, skipping otp email", zap.String("email", to))
		return nil
	}

	msg := mail.Message{
		To:      []string{to},
		Subject: "Your UniVerse verification code",
		Body: fmt.Sprintf(
			"Your verification code is %s. It expires in %d minutes.",
			code, int(s.ttl.Minutes())),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			s.log.Warn("smtp disabled, otp email not sent", zap.String("email", to))
			return nil
		}
		return err
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
