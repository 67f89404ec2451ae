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

// privateCommunityNotice is shown in place of the real description when a
// private community is viewed by an outsider.
const privateCommunityNotice = "This is a private community. Request to join to see more."

var (
	// ErrCommunityNotFound marks a missing community.
	ErrCommunityNotFound = apperrors.New("COMMUNITY_NOT_FOUND", "Community not found", http.StatusNotFound)
	// ErrCommunityNameTaken is returned when creating a community with an existing name.
	ErrCommunityNameTaken = apperrors.New("COMMUNITY_NAME_TAKEN", "A community with this name already exists", http.StatusConflict)
	// ErrAlreadyMember rejects join requests from existing members.
	ErrAlreadyMember = apperrors.New("ALREADY_MEMBER", "You are already a member of this community", http.StatusConflict)
	// ErrJoinRequestExists marks a pending or approved request for the pair.
	ErrJoinRequestExists = apperrors.New("JOIN_REQUEST_EXISTS", "A join request already exists", http.StatusConflict)
	// ErrJoinRequestNotFound marks a missing join request.
	ErrJoinRequestNotFound = apperrors.New("JOIN_REQUEST_NOT_FOUND", "Join request not found", http.StatusNotFound)
	// ErrNotCommunityAdmin rejects admin operations from non-admins.
	ErrNotCommunityAdmin = apperrors.New("NOT_COMMUNITY_ADMIN", "Only community admins may do this", http.StatusForbidden)
)

// CommunityInput holds the fields for creating or updating a community.
type CommunityInput struct {
	Name        string
	Description string
	ImageURL    string
	IsPrivate   *bool
}

// CommunityDetail is the API view of one community. For outsiders of a
// private community only the stub fields are populated.
type CommunityDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsPrivate   bool   `json:"is_private"`

	CanRequest bool `json:"can_request,omitempty"`

	Members      []models.User                 `json:"members,omitempty"`
	Admins       []models.User                 `json:"admins,omitempty"`
	Posts        []models.Post                 `json:"posts,omitempty"`
	JoinRequests []models.CommunityJoinRequest `json:"join_requests,omitempty"`
}

// CommunitySummary is the list view with counts.
type CommunitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsPrivate   bool   `json:"is_private"`
	MemberCount int64  `json:"member_count"`
}

// CommunityService manages communities and the private join workflow.
type CommunityService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewCommunityService constructs a CommunityService. Notifications may be nil.
func NewCommunityService(db *gorm.DB, notifications *NotificationService) (*CommunityService, error) {
	if db == nil {
		return nil, errors.New("community service: db is required")
	}
	return &CommunityService{db: db, notifications: notifications}, nil
}

// Create registers a community. The creator becomes its first admin and member.
func (s *CommunityService) Create(ctx context.Context, creatorID string, input CommunityInput) (*models.Community, error) {
	ctx = ensureContext(ctx)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Community name is required")
	}

	var creator models.User
	if err := s.db.WithContext(ctx).First(&creator, "id = ?", creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("community service: load creator: %w", err)
	}

	community := models.Community{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
	}
	if input.IsPrivate != nil {
		community.IsPrivate = *input.IsPrivate
	}
	community.Members = []models.User{creator}
	community.Admins = []models.User{creator}

	if err := s.db.WithContext(ctx).Create(&community).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCommunityNameTaken
		}
		return nil, fmt.Errorf("community service: create community: %w", err)
	}

	return &community, nil
}

// List returns all communities with member counts.
func (s *CommunityService) List(ctx context.Context) ([]CommunitySummary, error) {
	ctx = ensureContext(ctx)

	var communities []models.Community
	if err := s.db.WithContext(ctx).Order("name").Find(&communities).Error; err != nil {
		return nil, fmt.Errorf("community service: list communities: %w", err)
	}

	summaries := make([]CommunitySummary, 0, len(communities))
	for _, community := range communities {
		count := s.db.WithContext(ctx).Model(&community).Association("Members").Count()
		summaries = append(summaries, CommunitySummary{
			ID:          community.ID,
			Name:        community.Name,
			Description: community.Description,
			ImageURL:    community.ImageURL,
			IsPrivate:   community.IsPrivate,
			MemberCount: count,
		})
	}
	return summaries, nil
}

// Get returns a community detail for the requester. Private communities are
// redacted to a stub unless the requester is a member, an admin, a pending
// requester, or a site admin.
func (s *CommunityService) Get(ctx context.Context, requesterID, communityID string, siteAdmin bool) (*CommunityDetail, error) {
	ctx = ensureContext(ctx)

	var community models.Community
	err := s.db.WithContext(ctx).
		Preload("Members").
		Preload("Admins").
		Preload("Posts").
		Preload("Posts.User").
		Preload("JoinRequests").
		Preload("JoinRequests.User").
		First(&community, "id = ?", communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("community service: load community: %w", err)
	}

	if community.IsPrivate && !siteAdmin && !s.hasFullAccess(&community, requesterID) {
		return &CommunityDetail{
			ID:          community.ID,
			Name:        community.Name,
			Description: privateCommunityNotice,
			ImageURL:    community.ImageURL,
			IsPrivate:   true,
			CanRequest:  true,
		}, nil
	}

	return &CommunityDetail{
		ID:           community.ID,
		Name:         community.Name,
		Description:  community.Description,
		ImageURL:     community.ImageURL,
		IsPrivate:    community.IsPrivate,
		Members:      community.Members,
		Admins:       community.Admins,
		Posts:        community.Posts,
		JoinRequests: community.JoinRequests,
	}, nil
}

// Update changes community attributes. Only community admins may update.
func (s *CommunityService) Update(ctx context.Context, adminID, communityID string, input CommunityInput) (*models.Community, error) {
	ctx = ensureContext(ctx)

	community, err := s.load(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !s.isAdmin(ctx, communityID, adminID) {
		return nil, ErrNotCommunityAdmin
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		updates["description"] = desc
	}
	if image := strings.TrimSpace(input.ImageURL); image != "" {
		updates["image_url"] = image
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(community).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrCommunityNameTaken
			}
			return nil, fmt.Errorf("community service: update community: %w", err)
		}
	}

	return s.load(ctx, communityID)
}

// Delete removes a community. Only community admins may delete.
func (s *CommunityService) Delete(ctx context.Context, adminID, communityID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.load(ctx, communityID); err != nil {
		return err
	}
	if !s.isAdmin(ctx, communityID, adminID) {
		return ErrNotCommunityAdmin
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", communityID).
			Delete(&models.CommunityJoinRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Community{}, "id = ?", communityID).Error
	})
	if err != nil {
		return fmt.Errorf("community service: delete community: %w", err)
	}
	return nil
}

// RequestJoin files a join request for a community. Members cannot request.
// A settled rejection is cleared first so the user can try again; a pending
// or approved row surfaces as a conflict, with the unique constraint
// settling concurrent attempts.
func (s *CommunityService) RequestJoin(ctx context.Context, userID, communityID string) (*models.CommunityJoinRequest, error) {
	ctx = ensureContext(ctx)

	community, err := s.load(ctx, communityID)
	if err != nil {
		return nil, err
	}

	if s.isMember(ctx, communityID, userID) {
		return nil, ErrAlreadyMember
	}

	if err := s.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ? AND status = ?",
			communityID, userID, models.JoinRequestRejected).
		Delete(&models.CommunityJoinRequest{}).Error; err != nil {
		return nil, fmt.Errorf("community service: clear rejected request: %w", err)
	}

	request := models.CommunityJoinRequest{
		CommunityID: communityID,
		UserID:      userID,
		Status:      models.JoinRequestPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrJoinRequestExists
		}
		return nil, fmt.Errorf("community service: create request: %w", err)
	}

	s.notifyAdmins(ctx, community, userID)
	return &request, nil
}

// ApproveRequest approves a pending request and adds the member in one
// transaction so the two writes cannot diverge.
func (s *CommunityService) ApproveRequest(ctx context.Context, adminID, communityID, userID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.load(ctx, communityID); err != nil {
		return err
	}
	if !s.isAdmin(ctx, communityID, adminID) {
		return ErrNotCommunityAdmin
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CommunityJoinRequest{}).
			Where("community_id = ? AND user_id = ? AND status = ?",
				communityID, userID, models.JoinRequestPending).
			Update("status", models.JoinRequestApproved)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrJoinRequestNotFound
		}

		community := models.Community{BaseModel: models.BaseModel{ID: communityID}}
		member := models.User{ID: userID}
		return tx.Model(&community).Association("Members").Append(&member)
	})
	if err != nil {
		if errors.Is(err, ErrJoinRequestNotFound) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("community service: approve request: %w", err)
	}

	if community, loadErr := s.load(ctx, communityID); loadErr == nil {
		s.notifyUser(ctx, userID, models.NotificationCommunityInvite,
			"Your request to join "+community.Name+" was approved", "/communities/"+communityID)
	}
	return nil
}

// RejectRequest marks a pending request rejected. Membership is untouched.
func (s *CommunityService) RejectRequest(ctx context.Context, adminID, communityID, userID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.load(ctx, communityID); err != nil {
		return err
	}
	if !s.isAdmin(ctx, communityID, adminID) {
		return ErrNotCommunityAdmin
	}

	result := s.db.WithContext(ctx).Model(&models.CommunityJoinRequest{}).
		Where("community_id = ? AND user_id = ? AND status = ?",
			communityID, userID, models.JoinRequestPending).
		Update("status", models.JoinRequestRejected)
	if result.Error != nil {
		return fmt.Errorf("community service: reject request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJoinRequestNotFound
	}
	return nil
}

// CancelRequest lets the requester withdraw a pending request.
func (s *CommunityService) CancelRequest(ctx context.Context, userID, communityID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ? AND status = ?",
			communityID, userID, models.JoinRequestPending).
		Delete(&models.CommunityJoinRequest{})
	if result.Error != nil {
		return fmt.Errorf("community service: cancel request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJoinRequestNotFound
	}
	return nil
}

// AddMember adds a user directly. Only community admins may add.
func (s *CommunityService) AddMember(ctx context.Context, adminID, communityID, userID string) error {
	ctx = ensureContext(ctx)

	community, err := s.load(ctx, communityID)
	if err != nil {
		return err
	}
	if !s.isAdmin(ctx, communityID, adminID) {
		return ErrNotCommunityAdmin
	}
	if s.isMember(ctx, communityID, userID) {
		return ErrAlreadyMember
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("community service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(community).Association("Members").Append(&user); err != nil {
		return fmt.Errorf("community service: add member: %w", err)
	}

	s.notifyUser(ctx, userID, models.NotificationCommunityInvite,
		"You were added to "+community.Name, "/communities/"+communityID)
	return nil
}

func (s *CommunityService) load(ctx context.Context, communityID string) (*models.Community, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return nil, apperrors.NewBadRequest("Community id is required")
	}

	var community models.Community
	err := s.db.WithContext(ctx).First(&community, "id = ?", communityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("community service: load community: %w", err)
	}
	return &community, nil
}

func (s *CommunityService) isMember(ctx context.Context, communityID, userID string) bool {
	var count int64
	s.db.WithContext(ctx).Table("community_members").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count)
	return count > 0
}

func (s *CommunityService) isAdmin(ctx context.Context, communityID, userID string) bool {
	var count int64
	s.db.WithContext(ctx).Table("community_admins").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count)
	return count > 0
}

// hasFullAccess reports whether the requester may see the full private
// community payload: members, admins, and pending requesters qualify.
func (s *CommunityService) hasFullAccess(community *models.Community, requesterID string) bool {
	if requesterID == "" {
		return false
	}
	for _, member := range community.Members {
		if member.ID == requesterID {
			return true
		}
	}
	for _, admin := range community.Admins {
		if admin.ID == requesterID {
			return true
		}
	}
	for _, request := range community.JoinRequests {
		if request.UserID == requesterID && request.Status == models.JoinRequestPending {
			return true
		}
	}
	return false
}

func (s *CommunityService) notifyAdmins(ctx context.Context, community *models.Community, requesterID string) {
	if s.notifications == nil {
		return
	}

	var requester models.User
	if err := s.db.WithContext(ctx).Select("id", "name").First(&requester, "id = ?", requesterID).Error; err != nil {
		return
	}

	var adminIDs []string
	if err := s.db.WithContext(ctx).Table("community_admins").
		Where("community_id = ?", community.ID).
		Pluck("user_id", &adminIDs).Error; err != nil {
		return
	}

	for _, adminID := range adminIDs {
		_, _ = s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  adminID,
			Type:    models.NotificationCommunityRequest,
			Message: requester.Name + " requested to join " + community.Name,
			Link:    "/communities/" + community.ID,
		})
	}
}

func (s *CommunityService) notifyUser(ctx context.Context, userID, kind, message, link string) {
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
