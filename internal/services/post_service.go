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
	// ErrPostNotFound marks a missing or inaccessible post.
	ErrPostNotFound = apperrors.New("POST_NOT_FOUND", "Post not found", http.StatusNotFound)
	// ErrNotPostOwner rejects mutations by someone other than the author.
	ErrNotPostOwner = apperrors.New("NOT_POST_OWNER", "You may only modify your own posts", http.StatusForbidden)
)

// CreatePostInput holds the fields for a new post.
type CreatePostInput struct {
	Type  string
	Text  string
	Image string
	Video string
}

// FeedInput filters the post feed.
type FeedInput struct {
	ViewerID    string
	ViewerAdmin bool
	Limit       int
	Offset      int
}

// ReportPostInput describes a complaint about a post.
type ReportPostInput struct {
	PostID      string
	ReporterID  string
	Reason      string
	Description string
}

// PostService manages posts, likes, saves, and reports.
type PostService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewPostService constructs a PostService. Notifications may be nil.
func NewPostService(db *gorm.DB, notifications *NotificationService) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	return &PostService{db: db, notifications: notifications}, nil
}

// Create persists a post for the author.
func (s *PostService) Create(ctx context.Context, authorID string, input CreatePostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, apperrors.NewBadRequest("Author id is required")
	}

	text := strings.TrimSpace(input.Text)
	image := strings.TrimSpace(input.Image)
	video := strings.TrimSpace(input.Video)
	if text == "" && image == "" && video == "" {
		return nil, apperrors.NewBadRequest("A post needs text, an image, or a video")
	}

	postType := strings.TrimSpace(input.Type)
	switch {
	case postType != "":
	case video != "":
		postType = models.PostTypeVideo
	case image != "":
		postType = models.PostTypeImage
	default:
		postType = models.PostTypeText
	}

	post := models.Post{
		UserID: authorID,
		Type:   postType,
		Text:   text,
		Image:  image,
		Video:  video,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("post service: create post: %w", err)
	}

	return &post, nil
}

// Feed returns posts visible to the viewer: their own, posts by public
// authors, and posts by private authors they follow. Hidden posts appear
// only for admins.
func (s *PostService) Feed(ctx context.Context, input FeedInput) ([]models.Post, error) {
	ctx = ensureContext(ctx)
	viewerID := strings.TrimSpace(input.ViewerID)
	if viewerID == "" {
		return nil, apperrors.NewBadRequest("Viewer id is required")
	}

	query := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.user_id").
		Where(
			s.db.Where("posts.user_id = ?", viewerID).
				Or("users.is_private = ?", false).
				Or("posts.user_id IN (?)",
					s.db.Table("user_followers").
						Select("user_id").
						Where("follower_id = ?", viewerID)),
		)

	if !input.ViewerAdmin {
		query = query.Where("posts.is_hidden = ?", false)
	}

	var posts []models.Post
	if err := query.
		Preload("User").
		Preload("LikedBy").
		Preload("Comments").
		Preload("Comments.User").
		Order("posts.created_at DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(max(0, input.Offset)).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post service: list feed: %w", err)
	}

	return posts, nil
}

// Get loads a single post with author, likes, and comments.
func (s *PostService) Get(ctx context.Context, viewerID, postID string, viewerAdmin bool) (*models.Post, error) {
	ctx = ensureContext(ctx)

	post, err := s.loadFull(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsHidden && !viewerAdmin && post.UserID != viewerID {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Delete removes a post. Authors may delete their own; admins may delete any.
func (s *PostService) Delete(ctx context.Context, requesterID, postID string, requesterAdmin bool) error {
	ctx = ensureContext(ctx)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID && !requesterAdmin {
		return ErrNotPostOwner
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Select("LikedBy", "SavedBy").Delete(post).Error
	})
	if err != nil {
		return fmt.Errorf("post service: delete post: %w", err)
	}
	return nil
}

// Like records a like and notifies the author once.
func (s *PostService) Like(ctx context.Context, userID, postID string) error {
	ctx = ensureContext(ctx)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("post service: load user: %w", err)
	}

	var count int64
	s.db.WithContext(ctx).Table("post_likes").
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count)
	if count > 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(post).Association("LikedBy").Append(&user); err != nil {
		return fmt.Errorf("post service: add like: %w", err)
	}

	if post.UserID != userID {
		s.notify(ctx, post.UserID, models.NotificationLike,
			user.Name+" liked your post", "/posts/"+postID)
	}
	return nil
}

// Unlike removes a like if present.
func (s *PostService) Unlike(ctx context.Context, userID, postID string) error {
	ctx = ensureContext(ctx)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	user := models.User{ID: userID}
	if err := s.db.WithContext(ctx).Model(post).Association("LikedBy").Delete(&user); err != nil {
		return fmt.Errorf("post service: remove like: %w", err)
	}
	return nil
}

// Save bookmarks a post for the user.
func (s *PostService) Save(ctx context.Context, userID, postID string) error {
	ctx = ensureContext(ctx)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	user := models.User{ID: userID}
	if err := s.db.WithContext(ctx).Model(post).Association("SavedBy").Append(&user); err != nil {
		return fmt.Errorf("post service: save post: %w", err)
	}
	return nil
}

// Unsave removes a bookmark.
func (s *PostService) Unsave(ctx context.Context, userID, postID string) error {
	ctx = ensureContext(ctx)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	user := models.User{ID: userID}
	if err := s.db.WithContext(ctx).Model(post).Association("SavedBy").Delete(&user); err != nil {
		return fmt.Errorf("post service: unsave post: %w", err)
	}
	return nil
}

// SetHidden toggles moderation visibility on a post.
func (s *PostService) SetHidden(ctx context.Context, postID string, hidden bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("is_hidden", hidden)
	if result.Error != nil {
		return fmt.Errorf("post service: set hidden: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Report files a complaint about a post for admin review.
func (s *PostService) Report(ctx context.Context, input ReportPostInput) (*models.Report, error) {
	ctx = ensureContext(ctx)

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperrors.NewBadRequest("A reason is required")
	}

	if _, err := s.load(ctx, input.PostID); err != nil {
		return nil, err
	}

	report := models.Report{
		PostID:      input.PostID,
		ReporterID:  strings.TrimSpace(input.ReporterID),
		Reason:      reason,
		Description: strings.TrimSpace(input.Description),
		Status:      models.ReportPending,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("post service: create report: %w", err)
	}

	return &report, nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperrors.NewBadRequest("Post id is required")
	}

	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post service: load post: %w", err)
	}
	return &post, nil
}

func (s *PostService) loadFull(ctx context.Context, postID string) (*models.Post, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperrors.NewBadRequest("Post id is required")
	}

	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("LikedBy").
		Preload("Comments").
		Preload("Comments.User").
		First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post service: load post: %w", err)
	}
	return &post, nil
}

func (s *PostService) notify(ctx context.Context, userID, kind, message, link string) {
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
