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
	// ErrCommentNotFound marks a missing comment.
	ErrCommentNotFound = apperrors.New("COMMENT_NOT_FOUND", "Comment not found", http.StatusNotFound)
	// ErrNotCommentOwner rejects deleting someone else's comment.
	ErrNotCommentOwner = apperrors.New("NOT_COMMENT_OWNER", "You may only delete your own comments", http.StatusForbidden)
)

// CommentService manages post comments.
type CommentService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewCommentService constructs a CommentService. Notifications may be nil.
func NewCommentService(db *gorm.DB, notifications *NotificationService) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db, notifications: notifications}, nil
}

// Create attaches a comment to a post and notifies the post author.
func (s *CommentService) Create(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	ctx = ensureContext(ctx)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequest("Comment text is required")
	}

	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", strings.TrimSpace(postID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("comment service: load post: %w", err)
	}

	var author models.User
	if err := s.db.WithContext(ctx).Select("id", "name").First(&author, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("comment service: load user: %w", err)
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: author.ID,
		Text:   text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create comment: %w", err)
	}

	if post.UserID != author.ID && s.notifications != nil {
		_, _ = s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  post.UserID,
			Type:    models.NotificationComment,
			Message: author.Name + " commented on your post",
			Link:    "/posts/" + post.ID,
		})
	}

	return &comment, nil
}

// List returns a post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID string) ([]models.Comment, error) {
	ctx = ensureContext(ctx)

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", strings.TrimSpace(postID)).
		Order("created_at").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("comment service: list comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, requesterID, commentID string, requesterAdmin bool) error {
	ctx = ensureContext(ctx)

	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", strings.TrimSpace(commentID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("comment service: load comment: %w", err)
	}

	if comment.UserID != requesterID && !requesterAdmin {
		return ErrNotCommentOwner
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("comment service: delete comment: %w", err)
	}
	return nil
}
