package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/logger"
)

const (
	defaultNotificationRetentionDays = 90
	defaultSessionSpec               = "@hourly"
	defaultTokenSpec                 = "@hourly"
	defaultNotificationSpec          = "@daily"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// stale verification codes and reset tokens, and old read notifications.
type Cleaner struct {
	db        *gorm.DB
	sessions  *iauth.SessionService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	sessionSchedule      string
	tokenSchedule        string
	notificationSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSessionSchedule overrides the cron schedule for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithTokenSchedule overrides the cron schedule for token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron schedule for notification pruning.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil session
// service skips session cleanup.
func NewCleaner(db *gorm.DB, sessions *iauth.SessionService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                   db,
		sessions:             sessions,
		now:                  time.Now,
		retention:            defaultNotificationRetentionDays,
		sessionSchedule:      defaultSessionSpec,
		tokenSchedule:        defaultTokenSpec,
		notificationSchedule: defaultNotificationSpec,
		log:                  logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.sessions != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if _, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
			if _, err := CleanupTokens(context.Background(), c.db, c.now()); err != nil {
				c.log.Warn("token cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}

		if c.retention > 0 {
			if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
				if _, err := CleanupNotifications(context.Background(), c.db, c.now(), c.retention); err != nil {
					c.log.Warn("notification cleanup failed", zap.Error(err))
				}
			}); err != nil {
				return err
			}
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := CleanupTokens(ctx, c.db, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
		if c.retention > 0 {
			if _, err := CleanupNotifications(ctx, c.db, c.now(), c.retention); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}

	return errs
}

// TokenCleanupStats captures the number of records removed for each kind.
type TokenCleanupStats struct {
	EmailVerifications int64
	PasswordResets     int64
}

// CleanupTokens removes expired verification codes and reset tokens.
func CleanupTokens(ctx context.Context, db *gorm.DB, now time.Time) (TokenCleanupStats, error) {
	if db == nil {
		return TokenCleanupStats{}, errors.New("cleanup tokens: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := TokenCleanupStats{}

	result := db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.EmailVerification{})
	if result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: email verifications: %w", result.Error)
	}
	stats.EmailVerifications = result.RowsAffected

	result = db.WithContext(ctx).
		Model(&models.User{}).
		Where("reset_token <> '' AND reset_token_expiry < ?", now).
		Updates(map[string]any{"reset_token": "", "reset_token_expiry": nil})
	if result.Error != nil {
		return stats, fmt.Errorf("cleanup tokens: reset tokens: %w", result.Error)
	}
	stats.PasswordResets = result.RowsAffected

	return stats, nil
}

// CleanupNotifications deletes read notifications older than the retention window.
func CleanupNotifications(ctx context.Context, db *gorm.DB, now time.Time, retentionDays int) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup notifications: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
