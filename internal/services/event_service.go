package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

// ErrEventNotFound marks a missing event.
var ErrEventNotFound = apperrors.New("EVENT_NOT_FOUND", "Event not found", http.StatusNotFound)

// EventInput carries the fields for creating or updating an event.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// EventService manages campus events. Writes are admin operations and are
// gated at the route level.
type EventService struct {
	db *gorm.DB
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db}, nil
}

// List returns events ordered by start time.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	ctx = ensureContext(ctx)

	var events []models.Event
	if err := s.db.WithContext(ctx).Order("start_time").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("event service: list: %w", err)
	}
	return events, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.load(ensureContext(ctx), id)
}

// Create adds an event.
func (s *EventService) Create(ctx context.Context, input EventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := models.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("event service: create: %w", err)
	}
	return &event, nil
}

// Update replaces an event's fields.
func (s *EventService) Update(ctx context.Context, id string, input EventInput) (*models.Event, error) {
	ctx = ensureContext(ctx)

	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.Location = strings.TrimSpace(input.Location)
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime

	if err := s.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, fmt.Errorf("event service: update: %w", err)
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("event service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *EventService) load(ctx context.Context, id string) (*models.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("Event id is required")
	}

	var event models.Event
	err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event service: load: %w", err)
	}
	return &event, nil
}

func validateEventInput(input EventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewBadRequest("Event title is required")
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return apperrors.NewBadRequest("Event start and end times are required")
	}
	if !input.EndTime.After(input.StartTime) {
		return apperrors.NewBadRequest("Event end time must be after the start time")
	}
	return nil
}
