package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

var (
	// ErrReportNotFound marks a missing report.
	ErrReportNotFound = apperrors.New("REPORT_NOT_FOUND", "Report not found", http.StatusNotFound)
	// ErrStudentNotFound marks a missing pre-approved student entry.
	ErrStudentNotFound = apperrors.New("STUDENT_NOT_FOUND", "Pre-approved student not found", http.StatusNotFound)
	// ErrStudentExists rejects duplicate pre-approved entries.
	ErrStudentExists = apperrors.New("STUDENT_EXISTS", "A student with that email or USN is already pre-approved", http.StatusConflict)
)

// AdminUserSummary is a user row for the admin dashboard.
type AdminUserSummary struct {
	models.User
	PostCount     int64 `json:"post_count"`
	FollowerCount int64 `json:"follower_count"`
}

// AdminService backs the moderation dashboard. Every method assumes the
// caller passed the admin middleware.
type AdminService struct {
	db *gorm.DB
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB) (*AdminService, error) {
	if db == nil {
		return nil, errors.New("admin service: db is required")
	}
	return &AdminService{db: db}, nil
}

// ListUsers returns every user with post and follower counts.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]AdminUserSummary, int64, error) {
	ctx = ensureContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("admin service: count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit, 50, 200)).
		Offset(max(0, offset)).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("admin service: list users: %w", err)
	}

	summaries := make([]AdminUserSummary, 0, len(users))
	for _, user := range users {
		summary := AdminUserSummary{User: user}
		s.db.WithContext(ctx).Model(&models.Post{}).
			Where("user_id = ?", user.ID).
			Count(&summary.PostCount)
		s.db.WithContext(ctx).Table("user_followers").
			Where("user_id = ?", user.ID).
			Count(&summary.FollowerCount)
		summaries = append(summaries, summary)
	}
	return summaries, total, nil
}

// ListReports returns post reports newest first, optionally filtered by
// status, with the post and reporter attached.
func (s *AdminService) ListReports(ctx context.Context, status string) ([]models.Report, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.User").
		Preload("Reporter").
		Order("created_at DESC")
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("admin service: list reports: %w", err)
	}
	return reports, nil
}

// ResolveReport marks a report resolved, optionally hiding the post it
// targets in the same transaction.
func (s *AdminService) ResolveReport(ctx context.Context, reportID string, hidePost bool) (*models.Report, error) {
	return s.settleReport(ensureContext(ctx), reportID, models.ReportResolved, hidePost)
}

// DismissReport marks a report dismissed without touching the post.
func (s *AdminService) DismissReport(ctx context.Context, reportID string) (*models.Report, error) {
	return s.settleReport(ensureContext(ctx), reportID, models.ReportDismissed, false)
}

func (s *AdminService) settleReport(ctx context.Context, reportID, status string, hidePost bool) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", strings.TrimSpace(reportID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin service: load report: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&report).Update("status", status).Error; err != nil {
			return err
		}
		if hidePost {
			return tx.Model(&models.Post{}).
				Where("id = ?", report.PostID).
				Update("is_hidden", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("admin service: settle report: %w", err)
	}

	report.Status = status
	return &report, nil
}

// ListPreApproved returns the pre-approved student roster.
func (s *AdminService) ListPreApproved(ctx context.Context) ([]models.PreApprovedStudent, error) {
	ctx = ensureContext(ctx)

	var students []models.PreApprovedStudent
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("admin service: list pre-approved: %w", err)
	}
	return students, nil
}

// AddPreApproved registers a student email and USN pair for signup.
func (s *AdminService) AddPreApproved(ctx context.Context, email, usn string) (*models.PreApprovedStudent, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	usn = strings.ToUpper(strings.TrimSpace(usn))
	if email == "" || usn == "" {
		return nil, apperrors.NewBadRequest("Email and USN are required")
	}

	student := models.PreApprovedStudent{Email: email, USN: usn}
	if err := s.db.WithContext(ctx).Create(&student).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrStudentExists
		}
		return nil, fmt.Errorf("admin service: add pre-approved: %w", err)
	}
	return &student, nil
}

// RemovePreApproved removes a roster entry.
func (s *AdminService) RemovePreApproved(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.PreApprovedStudent{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("admin service: remove pre-approved: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// GetSettings returns the dashboard settings row, creating it with defaults
// on first access.
func (s *AdminService) GetSettings(ctx context.Context) (*models.AdminSetting, error) {
	ctx = ensureContext(ctx)

	settings := models.AdminSetting{
		BaseModel:      models.BaseModel{ID: "settings"},
		EmailAlerts:    true,
		SessionTimeout: 60,
	}
	if err := s.db.WithContext(ctx).FirstOrCreate(&settings, "id = ?", "settings").Error; err != nil {
		return nil, fmt.Errorf("admin service: load settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings replaces the dashboard settings.
func (s *AdminService) UpdateSettings(ctx context.Context, darkMode, emailAlerts bool, sessionTimeout int) (*models.AdminSetting, error) {
	ctx = ensureContext(ctx)

	if sessionTimeout <= 0 {
		return nil, apperrors.NewBadRequest("Session timeout must be positive")
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"dark_mode":       darkMode,
		"email_alerts":    emailAlerts,
		"session_timeout": sessionTimeout,
	}
	if err := s.db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("admin service: update settings: %w", err)
	}

	settings.DarkMode = darkMode
	settings.EmailAlerts = emailAlerts
	settings.SessionTimeout = sessionTimeout
	return settings, nil
}
