package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/crypto"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

var (
	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "An account with this email already exists", http.StatusConflict)
	// ErrUserNotFound marks a missing user.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
)

// SignupInput holds the fields required to register a user.
type SignupInput struct {
	Name     string
	Email    string
	USN      string
	Password string
	ImageURL string
	About    string
}

// UpdateProfileInput holds the mutable profile fields. Nil pointers leave the
// current value untouched.
type UpdateProfileInput struct {
	Name      *string
	ImageURL  *string
	BgImage   *string
	About     *string
	Tag       *string
	IsPrivate *bool
}

// UserService manages accounts and profiles.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Signup registers a new account. The email must be unique; the password is
// stored as a bcrypt hash.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	email := normaliseEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("Name, email, and password are required")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	tag, err := s.deriveTag(ctx, email)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		USN:      strings.ToUpper(strings.TrimSpace(input.USN)),
		Password: hash,
		ImageURL: defaultIfEmpty(input.ImageURL, defaultAvatarURL(name)),
		About:    defaultIfEmpty(strings.TrimSpace(input.About), "Hey there! I am using UniVerse."),
		Tag:      tag,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// Get returns a user profile. The requester's own profile includes saved
// posts; other profiles do not. Private profiles expose their follower and
// following lists only to the owner and accepted followers.
func (s *UserService) Get(ctx context.Context, requesterID, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("User id is required")
	}

	query := s.db.WithContext(ctx).
		Preload("Followers").
		Preload("Following")
	if requesterID == userID {
		query = query.Preload("SavedPosts").Preload("SavedPosts.User")
	}

	var user models.User
	err := query.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if user.IsPrivate && requesterID != userID {
		follower, err := s.isFollower(ctx, requesterID, userID)
		if err != nil {
			return nil, err
		}
		if !follower {
			user.Followers = nil
			user.Following = nil
		}
	}

	return &user, nil
}

func (s *UserService) isFollower(ctx context.Context, followerID, userID string) (bool, error) {
	followerID = strings.TrimSpace(followerID)
	if followerID == "" {
		return false, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Table("user_followers").
		Where("user_id = ? AND follower_id = ?", userID, followerID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("user service: check follower: %w", err)
	}
	return count > 0, nil
}

// GetByEmail looks up a user by email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)
	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the supplied changes to the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			updates["name"] = name
		}
	}
	if input.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.BgImage != nil {
		updates["bg_image"] = strings.TrimSpace(*input.BgImage)
	}
	if input.About != nil {
		updates["about"] = strings.TrimSpace(*input.About)
	}
	if input.Tag != nil {
		if tag := strings.TrimSpace(*input.Tag); tag != "" {
			updates["tag"] = tag
		}
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
	}

	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("TAG_TAKEN", "This tag is already in use", http.StatusConflict)
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.Get(ctx, userID, userID)
}

// Delete removes an account. Only the account owner or an admin may delete.
func (s *UserService) Delete(ctx context.Context, requesterID, userID string, requesterIsAdmin bool) error {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("User id is required")
	}
	if requesterID != userID && !requesterIsAdmin {
		return apperrors.ErrForbidden
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("user service: delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Search finds users whose name, tag, or email contains the query.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	ctx = ensureContext(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewBadRequest("Search query is required")
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(tag) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Limit(clampLimit(limit, 20, 50)).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: search users: %w", err)
	}

	return users, nil
}

func (s *UserService) deriveTag(ctx context.Context, email string) (string, error) {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	tag := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, strings.ToLower(local))
	if tag == "" {
		tag = "user"
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("tag = ?", tag).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("user service: check tag: %w", err)
	}
	if count > 0 {
		tag = tag + "-" + uuid.NewString()[:6]
	}
	return tag, nil
}

func defaultAvatarURL(name string) string {
	initial := "U"
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		initial = strings.ToUpper(trimmed[:1])
	}
	return "https://ui-avatars.com/api/?name=" + initial
}
