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
	"github.com/universe-app/universe/internal/realtime"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

var (
	// ErrGroupNotFound marks a missing group.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)
	// ErrNotGroupMember rejects access to groups the caller does not belong to.
	ErrNotGroupMember = apperrors.New("NOT_GROUP_MEMBER", "You are not a member of this group", http.StatusForbidden)
	// ErrNotGroupAdmin rejects group management by regular members.
	ErrNotGroupAdmin = apperrors.New("NOT_GROUP_ADMIN", "Only group admins can do that", http.StatusForbidden)
	// ErrAlreadyGroupMember rejects duplicate additions.
	ErrAlreadyGroupMember = apperrors.New("ALREADY_GROUP_MEMBER", "User is already in the group", http.StatusConflict)
	// ErrGroupMessageNotFound marks a missing group message.
	ErrGroupMessageNotFound = apperrors.New("GROUP_MESSAGE_NOT_FOUND", "Message not found", http.StatusNotFound)
)

// CreateGroupInput carries the fields for a new group.
type CreateGroupInput struct {
	Name      string
	ImageURL  string
	CreatedBy string
	MemberIDs []string
}

// SendGroupMessageInput carries one outgoing group message.
type SendGroupMessageInput struct {
	GroupID   string
	UserID    string
	Content   string
	ImageURL  string
	VideoURL  string
	Documents []string
}

// GroupService manages group chats, their membership, and messages.
type GroupService struct {
	db            *gorm.DB
	hub           *realtime.Hub
	notifications *NotificationService
}

// NewGroupService constructs a GroupService. Hub and notifications may be nil.
func NewGroupService(db *gorm.DB, hub *realtime.Hub, notifications *NotificationService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{db: db, hub: hub, notifications: notifications}, nil
}

// Create makes a group with the creator as admin plus the given members.
func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Group name is required")
	}
	creator := strings.TrimSpace(input.CreatedBy)
	if creator == "" {
		return nil, apperrors.NewBadRequest("Creator is required")
	}

	group := models.Group{
		Name:      name,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		CreatedBy: creator,
		Members:   []models.GroupMember{{UserID: creator, Role: models.GroupRoleAdmin}},
	}
	for _, memberID := range normaliseIDs(input.MemberIDs) {
		if memberID == creator {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{UserID: memberID, Role: models.GroupRoleMember})
	}

	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, fmt.Errorf("group service: create: %w", err)
	}

	for _, member := range group.Members {
		if member.UserID == creator {
			continue
		}
		s.notifyMember(ctx, member.UserID, group, "You were added to the group "+group.Name)
	}
	return s.Get(ctx, creator, group.ID)
}

// ListForUser returns the groups the user belongs to, most recent first.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	var groupIDs []string
	if err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Pluck("group_id", &groupIDs).Error; err != nil {
		return nil, fmt.Errorf("group service: list group ids: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var groups []models.Group
	if err := s.db.WithContext(ctx).
		Preload("Members.User").
		Where("id IN ?", groupIDs).
		Order("updated_at DESC").
		Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// Get returns a group with its members. Members only.
func (s *GroupService) Get(ctx context.Context, userID, groupID string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !s.IsMember(ctx, group.ID, userID) {
		return nil, ErrNotGroupMember
	}

	if err := s.db.WithContext(ctx).
		Preload("Members.User").
		First(group, "id = ?", group.ID).Error; err != nil {
		return nil, fmt.Errorf("group service: load members: %w", err)
	}
	return group, nil
}

// AddMember adds a user to the group. Admins only.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) error {
	ctx = ensureContext(ctx)

	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !s.isAdmin(ctx, group.ID, actorID) {
		return ErrNotGroupAdmin
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("User id is required")
	}

	member := models.GroupMember{GroupID: group.ID, UserID: userID, Role: models.GroupRoleMember}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyGroupMember
		}
		return fmt.Errorf("group service: add member: %w", err)
	}

	s.notifyMember(ctx, userID, *group, "You were added to the group "+group.Name)
	return nil
}

// RemoveMember removes a user from the group. Admins only.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	ctx = ensureContext(ctx)

	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !s.isAdmin(ctx, group.ID, actorID) {
		return ErrNotGroupAdmin
	}

	result := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", group.ID, strings.TrimSpace(userID)).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return fmt.Errorf("group service: remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotGroupMember
	}
	return nil
}

// Leave removes the caller from the group. When the last admin leaves, the
// longest-standing remaining member is promoted. An emptied group is deleted.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	ctx = ensureContext(ctx)

	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membership models.GroupMember
		err := tx.Where("group_id = ? AND user_id = ?", group.ID, userID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		if err != nil {
			return fmt.Errorf("group service: load membership: %w", err)
		}

		if err := tx.Delete(&membership).Error; err != nil {
			return fmt.Errorf("group service: leave: %w", err)
		}

		var remaining int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ?", group.ID).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("group service: count members: %w", err)
		}
		if remaining == 0 {
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMessage{}).Error; err != nil {
				return fmt.Errorf("group service: delete messages: %w", err)
			}
			if err := tx.Delete(&models.Group{}, "id = ?", group.ID).Error; err != nil {
				return fmt.Errorf("group service: delete group: %w", err)
			}
			return nil
		}

		if membership.Role != models.GroupRoleAdmin {
			return nil
		}

		var admins int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND role = ?", group.ID, models.GroupRoleAdmin).
			Count(&admins).Error; err != nil {
			return fmt.Errorf("group service: count admins: %w", err)
		}
		if admins > 0 {
			return nil
		}

		var oldest models.GroupMember
		if err := tx.Where("group_id = ?", group.ID).
			Order("created_at").
			First(&oldest).Error; err != nil {
			return fmt.Errorf("group service: find oldest member: %w", err)
		}
		if err := tx.Model(&oldest).Update("role", models.GroupRoleAdmin).Error; err != nil {
			return fmt.Errorf("group service: promote member: %w", err)
		}
		return nil
	})
}

// SendMessage persists a group message and broadcasts it on the group stream.
func (s *GroupService) SendMessage(ctx context.Context, input SendGroupMessageInput) (*models.GroupMessage, error) {
	ctx = ensureContext(ctx)

	content := strings.TrimSpace(input.Content)
	image := strings.TrimSpace(input.ImageURL)
	video := strings.TrimSpace(input.VideoURL)
	if content == "" && image == "" && video == "" && len(input.Documents) == 0 {
		return nil, apperrors.NewBadRequest("A message needs content")
	}

	group, err := s.load(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !s.IsMember(ctx, group.ID, input.UserID) {
		return nil, ErrNotGroupMember
	}

	message := models.GroupMessage{
		GroupID:  group.ID,
		UserID:   input.UserID,
		Content:  content,
		ImageURL: image,
		VideoURL: video,
	}
	if len(input.Documents) > 0 {
		data, err := json.Marshal(normaliseIDs(input.Documents))
		if err != nil {
			return nil, fmt.Errorf("group service: marshal documents: %w", err)
		}
		message.Documents = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("group service: send message: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("User").First(&message, "id = ?", message.ID).Error; err == nil && s.hub != nil {
		s.hub.Broadcast(realtime.GroupStream(group.ID), realtime.Event{
			Type: "message.created",
			Data: message,
		})
	}
	return &message, nil
}

// ListMessages returns a group's messages oldest first. Members only.
func (s *GroupService) ListMessages(ctx context.Context, userID, groupID string, limit, offset int) ([]models.GroupMessage, error) {
	ctx = ensureContext(ctx)

	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !s.IsMember(ctx, group.ID, userID) {
		return nil, ErrNotGroupMember
	}

	var messages []models.GroupMessage
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", group.ID).
		Order("created_at").
		Limit(clampLimit(limit, 50, 200)).
		Offset(max(0, offset)).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("group service: list messages: %w", err)
	}
	return messages, nil
}

// DeleteMessage removes the caller's own group message.
func (s *GroupService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	ctx = ensureContext(ctx)

	var message models.GroupMessage
	err := s.db.WithContext(ctx).First(&message, "id = ?", strings.TrimSpace(messageID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("group service: load message: %w", err)
	}

	if message.UserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&message).Error; err != nil {
		return fmt.Errorf("group service: delete message: %w", err)
	}

	if s.hub != nil {
		s.hub.Broadcast(realtime.GroupStream(message.GroupID), realtime.Event{
			Type: "message.deleted",
			Data: map[string]string{"id": message.ID},
		})
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID string) bool {
	var count int64
	s.db.WithContext(ensureContext(ctx)).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count)
	return count > 0
}

func (s *GroupService) isAdmin(ctx context.Context, groupID, userID string) bool {
	var count int64
	s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, models.GroupRoleAdmin).
		Count(&count)
	return count > 0
}

func (s *GroupService) load(ctx context.Context, groupID string) (*models.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, apperrors.NewBadRequest("Group id is required")
	}

	var group models.Group
	err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load: %w", err)
	}
	return &group, nil
}

func (s *GroupService) notifyMember(ctx context.Context, userID string, group models.Group, message string) {
	if s.notifications == nil {
		return
	}
	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  userID,
		Type:    models.NotificationCommunityInvite,
		Message: message,
		Link:    "/groups/" + group.ID,
	})
}
