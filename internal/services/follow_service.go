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
	// ErrSelfFollow rejects follow actions targeting the caller.
	ErrSelfFollow = apperrors.New("SELF_FOLLOW", "You cannot follow yourself", http.StatusBadRequest)
	// ErrDuplicateFollowRequest marks an already pending request for the pair.
	ErrDuplicateFollowRequest = apperrors.New("FOLLOW_REQUEST_EXISTS", "A follow request is already pending", http.StatusConflict)
	// ErrFollowRequestNotFound marks a missing follow request.
	ErrFollowRequestNotFound = apperrors.New("FOLLOW_REQUEST_NOT_FOUND", "Follow request not found", http.StatusNotFound)
)

// FollowResult reports what a follow attempt produced.
type FollowResult struct {
	Following bool                  `json:"following"`
	Request   *models.FollowRequest `json:"request,omitempty"`
}

// FollowService manages follow edges and follow requests for private profiles.
type FollowService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewFollowService constructs a FollowService. Notifications may be nil.
func NewFollowService(db *gorm.DB, notifications *NotificationService) (*FollowService, error) {
	if db == nil {
		return nil, errors.New("follow service: db is required")
	}
	return &FollowService{db: db, notifications: notifications}, nil
}

// Follow follows a public profile immediately or files a request for a
// private one.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID string) (*FollowResult, error) {
	ctx = ensureContext(ctx)
	followerID = strings.TrimSpace(followerID)
	targetID = strings.TrimSpace(targetID)
	if followerID == "" || targetID == "" {
		return nil, apperrors.NewBadRequest("User id is required")
	}
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	var target models.User
	err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("follow service: load target: %w", err)
	}

	var follower models.User
	if err := s.db.WithContext(ctx).First(&follower, "id = ?", followerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("follow service: load follower: %w", err)
	}

	if target.IsPrivate {
		// A settled request from an earlier attempt must not block a new one.
		if err := s.db.WithContext(ctx).
			Where("from_user_id = ? AND to_user_id = ? AND status <> ?",
				followerID, targetID, models.FollowRequestPending).
			Delete(&models.FollowRequest{}).Error; err != nil {
			return nil, fmt.Errorf("follow service: clear settled request: %w", err)
		}

		request := models.FollowRequest{
			FromUserID: followerID,
			ToUserID:   targetID,
			Status:     models.FollowRequestPending,
		}
		if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrDuplicateFollowRequest
			}
			return nil, fmt.Errorf("follow service: create request: %w", err)
		}

		s.notify(ctx, targetID, models.NotificationFollowRequest,
			follower.Name+" requested to follow you", "/profile/"+followerID)
		return &FollowResult{Request: &request}, nil
	}

	if err := s.db.WithContext(ctx).Model(&target).Association("Followers").Append(&follower); err != nil {
		return nil, fmt.Errorf("follow service: add follower: %w", err)
	}

	s.notify(ctx, targetID, models.NotificationFollow,
		follower.Name+" started following you", "/profile/"+followerID)
	return &FollowResult{Following: true}, nil
}

// Unfollow removes the follow edge if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID string) error {
	ctx = ensureContext(ctx)
	if followerID == "" || targetID == "" {
		return apperrors.NewBadRequest("User id is required")
	}

	target := models.User{ID: targetID}
	follower := models.User{ID: followerID}
	if err := s.db.WithContext(ctx).Model(&target).Association("Followers").Delete(&follower); err != nil {
		return fmt.Errorf("follow service: remove follower: %w", err)
	}
	return nil
}

// ListRequests returns pending requests addressed to the user.
func (s *FollowService) ListRequests(ctx context.Context, userID string) ([]models.FollowRequest, error) {
	ctx = ensureContext(ctx)

	var requests []models.FollowRequest
	if err := s.db.WithContext(ctx).
		Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.FollowRequestPending).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("follow service: list requests: %w", err)
	}
	return requests, nil
}

// Accept approves a pending request addressed to the caller and adds the edge.
func (s *FollowService) Accept(ctx context.Context, userID, requestID string) error {
	ctx = ensureContext(ctx)

	request, err := s.loadPending(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToUserID != userID {
		return apperrors.ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FollowRequest{}).
			Where("id = ?", request.ID).
			Update("status", models.FollowRequestAccepted).Error; err != nil {
			return err
		}
		target := models.User{ID: request.ToUserID}
		follower := models.User{ID: request.FromUserID}
		return tx.Model(&target).Association("Followers").Append(&follower)
	})
	if err != nil {
		return fmt.Errorf("follow service: accept request: %w", err)
	}

	var accepter models.User
	if err := s.db.WithContext(ctx).Select("id", "name").First(&accepter, "id = ?", userID).Error; err == nil {
		s.notify(ctx, request.FromUserID, models.NotificationFollowAccept,
			accepter.Name+" accepted your follow request", "/profile/"+userID)
	}
	return nil
}

// Reject marks a pending request rejected without adding an edge.
func (s *FollowService) Reject(ctx context.Context, userID, requestID string) error {
	ctx = ensureContext(ctx)

	request, err := s.loadPending(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToUserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&models.FollowRequest{}).
		Where("id = ?", request.ID).
		Update("status", models.FollowRequestRejected).Error; err != nil {
		return fmt.Errorf("follow service: reject request: %w", err)
	}
	return nil
}

// Cancel lets the requester withdraw a pending request.
func (s *FollowService) Cancel(ctx context.Context, userID, requestID string) error {
	ctx = ensureContext(ctx)

	request, err := s.loadPending(ctx, requestID)
	if err != nil {
		return err
	}
	if request.FromUserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&models.FollowRequest{}, "id = ?", request.ID).Error; err != nil {
		return fmt.Errorf("follow service: cancel request: %w", err)
	}
	return nil
}

func (s *FollowService) loadPending(ctx context.Context, requestID string) (*models.FollowRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, apperrors.NewBadRequest("Request id is required")
	}

	var request models.FollowRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", requestID, models.FollowRequestPending).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFollowRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("follow service: load request: %w", err)
	}
	return &request, nil
}

func (s *FollowService) notify(ctx context.Context, userID, kind, message, link string) {
	if s.notifications == nil {
		return
	}
	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  userID,
		Type:    kind,
		Message: message,
		Link:    link,
	})
}
