package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

// ErrAnnouncementNotFound marks a missing announcement.
var ErrAnnouncementNotFound = apperrors.New("ANNOUNCEMENT_NOT_FOUND", "Announcement not found", http.StatusNotFound)

// AnnouncementInput carries the fields for creating or updating an
// announcement.
type AnnouncementInput struct {
	Title       string
	Content     string
	Category    string
	Attachments []string
}

// AnnouncementService manages campus announcements. Writes are admin
// operations and are gated at the route level.
type AnnouncementService struct {
	db *gorm.DB
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(db *gorm.DB) (*AnnouncementService, error) {
	if db == nil {
		return nil, errors.New("announcement service: db is required")
	}
	return &AnnouncementService{db: db}, nil
}

// List returns announcements newest first.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	ctx = ensureContext(ctx)

	var announcements []models.Announcement
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, fmt.Errorf("announcement service: list: %w", err)
	}
	return announcements, nil
}

// Get returns a single announcement.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	return s.load(ensureContext(ctx), id)
}

// Create adds an announcement.
func (s *AnnouncementService) Create(ctx context.Context, input AnnouncementInput) (*models.Announcement, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewBadRequest("Announcement title and content are required")
	}

	announcement := models.Announcement{
		Title:    title,
		Content:  content,
		Category: strings.TrimSpace(input.Category),
	}
	if attachments, err := marshalAttachments(input.Attachments); err != nil {
		return nil, err
	} else if attachments != nil {
		announcement.Attachments = attachments
	}

	if err := s.db.WithContext(ctx).Create(&announcement).Error; err != nil {
		return nil, fmt.Errorf("announcement service: create: %w", err)
	}
	return &announcement, nil
}

// Update replaces an announcement's fields.
func (s *AnnouncementService) Update(ctx context.Context, id string, input AnnouncementInput) (*models.Announcement, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewBadRequest("Announcement title and content are required")
	}

	announcement, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	announcement.Title = title
	announcement.Content = content
	announcement.Category = strings.TrimSpace(input.Category)
	attachments, err := marshalAttachments(input.Attachments)
	if err != nil {
		return nil, err
	}
	announcement.Attachments = attachments

	if err := s.db.WithContext(ctx).Save(announcement).Error; err != nil {
		return nil, fmt.Errorf("announcement service: update: %w", err)
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("announcement service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

func (s *AnnouncementService) load(ctx context.Context, id string) (*models.Announcement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("Announcement id is required")
	}

	var announcement models.Announcement
	err := s.db.WithContext(ctx).First(&announcement, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("announcement service: load: %w", err)
	}
	return &announcement, nil
}

func marshalAttachments(attachments []string) (datatypes.JSON, error) {
	cleaned := normaliseIDs(attachments)
	if len(cleaned) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("announcement service: marshal attachments: %w", err)
	}
	return datatypes.JSON(data), nil
}
