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

// ErrHelpMessageNotFound marks a missing help message.
var ErrHelpMessageNotFound = apperrors.New("HELP_MESSAGE_NOT_FOUND", "Help message not found", http.StatusNotFound)

// HelpService handles support messages submitted from the public help form.
type HelpService struct {
	db *gorm.DB
}

// NewHelpService constructs a HelpService.
func NewHelpService(db *gorm.DB) (*HelpService, error) {
	if db == nil {
		return nil, errors.New("help service: db is required")
	}
	return &HelpService{db: db}, nil
}

// Submit records a help message. Open to unauthenticated callers.
func (s *HelpService) Submit(ctx context.Context, email, message string) (*models.HelpMessage, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	message = strings.TrimSpace(message)
	if email == "" || message == "" {
		return nil, apperrors.NewBadRequest("Email and message are required")
	}

	help := models.HelpMessage{
		Email:   email,
		Message: message,
		Status:  models.HelpOpen,
	}
	if err := s.db.WithContext(ctx).Create(&help).Error; err != nil {
		return nil, fmt.Errorf("help service: submit: %w", err)
	}
	return &help, nil
}

// List returns help messages newest first, optionally filtered by status.
func (s *HelpService) List(ctx context.Context, status string) ([]models.HelpMessage, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var messages []models.HelpMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("help service: list: %w", err)
	}
	return messages, nil
}

// UpdateStatus moves a help message between open and resolved.
func (s *HelpService) UpdateStatus(ctx context.Context, id, status string) (*models.HelpMessage, error) {
	ctx = ensureContext(ctx)

	status = strings.TrimSpace(status)
	if status != models.HelpOpen && status != models.HelpResolved {
		return nil, apperrors.NewBadRequest("Status must be open or resolved")
	}

	help, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(help).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("help service: update status: %w", err)
	}
	help.Status = status
	return help, nil
}

// Delete removes a help message.
func (s *HelpService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.HelpMessage{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("help service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHelpMessageNotFound
	}
	return nil
}

func (s *HelpService) load(ctx context.Context, id string) (*models.HelpMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("Help message id is required")
	}

	var help models.HelpMessage
	err := s.db.WithContext(ctx).First(&help, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHelpMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("help service: load: %w", err)
	}
	return &help, nil
}
