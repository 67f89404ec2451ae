package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/internal/realtime"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

var (
	// ErrChatRoomNotFound marks a missing chat room.
	ErrChatRoomNotFound = apperrors.New("CHAT_ROOM_NOT_FOUND", "Chat room not found", http.StatusNotFound)
	// ErrNotRoomMember rejects access to rooms the caller does not belong to.
	ErrNotRoomMember = apperrors.New("NOT_ROOM_MEMBER", "You are not a member of this chat", http.StatusForbidden)
	// ErrMessageNotFound marks a missing message.
	ErrMessageNotFound = apperrors.New("MESSAGE_NOT_FOUND", "Message not found", http.StatusNotFound)
)

// SendMessageInput carries one outgoing chat message.
type SendMessageInput struct {
	RoomID    string
	UserID    string
	Text      string
	Image     string
	Video     string
	Documents []string
}

// ChatService manages direct chat rooms and their messages.
type ChatService struct {
	db            *gorm.DB
	hub           *realtime.Hub
	notifications *NotificationService
}

// NewChatService constructs a ChatService. Hub and notifications may be nil.
func NewChatService(db *gorm.DB, hub *realtime.Hub, notifications *NotificationService) (*ChatService, error) {
	if db == nil {
		return nil, errors.New("chat service: db is required")
	}
	return &ChatService{db: db, hub: hub, notifications: notifications}, nil
}

// GetOrCreateRoom returns the direct room between two users, creating it on
// first contact.
func (s *ChatService) GetOrCreateRoom(ctx context.Context, userID, otherID string) (*models.ChatRoom, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	otherID = strings.TrimSpace(otherID)
	if userID == "" || otherID == "" || userID == otherID {
		return nil, apperrors.NewBadRequest("Two distinct user ids are required")
	}

	var roomIDs []string
	if err := s.db.WithContext(ctx).Table("chat_room_members").
		Select("chat_room_id").
		Where("user_id IN ?", []string{userID, otherID}).
		Group("chat_room_id").
		Having("COUNT(DISTINCT user_id) = 2").
		Pluck("chat_room_id", &roomIDs).Error; err != nil {
		return nil, fmt.Errorf("chat service: find room: %w", err)
	}

	if len(roomIDs) > 0 {
		var room models.ChatRoom
		if err := s.db.WithContext(ctx).
			Preload("Members").
			First(&room, "id = ?", roomIDs[0]).Error; err != nil {
			return nil, fmt.Errorf("chat service: load room: %w", err)
		}
		return &room, nil
	}

	var members []models.User
	if err := s.db.WithContext(ctx).
		Where("id IN ?", []string{userID, otherID}).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("chat service: load members: %w", err)
	}
	if len(members) != 2 {
		return nil, ErrUserNotFound
	}

	room := models.ChatRoom{Members: members}
	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, fmt.Errorf("chat service: create room: %w", err)
	}
	return &room, nil
}

// ListRooms returns the user's rooms ordered by most recent activity.
func (s *ChatService) ListRooms(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	ctx = ensureContext(ctx)

	var roomIDs []string
	if err := s.db.WithContext(ctx).Table("chat_room_members").
		Where("user_id = ?", strings.TrimSpace(userID)).
		Pluck("chat_room_id", &roomIDs).Error; err != nil {
		return nil, fmt.Errorf("chat service: list room ids: %w", err)
	}
	if len(roomIDs) == 0 {
		return nil, nil
	}

	var rooms []models.ChatRoom
	if err := s.db.WithContext(ctx).
		Preload("Members").
		Where("id IN ?", roomIDs).
		Order("updated_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("chat service: list rooms: %w", err)
	}
	return rooms, nil
}

// SendMessage persists a message, bumps room recency, broadcasts it on the
// room stream, and notifies the other members.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	ctx = ensureContext(ctx)

	text := strings.TrimSpace(input.Text)
	image := strings.TrimSpace(input.Image)
	video := strings.TrimSpace(input.Video)
	if text == "" && image == "" && video == "" && len(input.Documents) == 0 {
		return nil, apperrors.NewBadRequest("A message needs content")
	}

	room, err := s.loadRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if !s.IsRoomMember(ctx, room.ID, input.UserID) {
		return nil, ErrNotRoomMember
	}

	message := models.Message{
		ChatRoomID: room.ID,
		UserID:     input.UserID,
		Text:       text,
		Image:      image,
		Video:      video,
	}
	if len(input.Documents) > 0 {
		data, err := json.Marshal(normaliseIDs(input.Documents))
		if err != nil {
			return nil, fmt.Errorf("chat service: marshal documents: %w", err)
		}
		message.Documents = datatypes.JSON(data)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatRoom{}).
			Where("id = ?", room.ID).
			Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("chat service: send message: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("User").First(&message, "id = ?", message.ID).Error; err == nil {
		s.broadcast(room.ID, message)
	}
	s.notifyOthers(ctx, room, message)

	return &message, nil
}

// ListMessages returns a room's messages oldest first. Members only.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]models.Message, error) {
	ctx = ensureContext(ctx)

	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !s.IsRoomMember(ctx, room.ID, userID) {
		return nil, ErrNotRoomMember
	}

	var messages []models.Message
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("chat_room_id = ?", room.ID).
		Order("created_at").
		Limit(clampLimit(limit, 50, 200)).
		Offset(max(0, offset)).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("chat service: list messages: %w", err)
	}
	return messages, nil
}

// DeleteMessage removes the caller's own message.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	ctx = ensureContext(ctx)

	var message models.Message
	err := s.db.WithContext(ctx).First(&message, "id = ?", strings.TrimSpace(messageID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("chat service: load message: %w", err)
	}

	if message.UserID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&message).Error; err != nil {
		return fmt.Errorf("chat service: delete message: %w", err)
	}

	if s.hub != nil {
		s.hub.Broadcast(realtime.ChatStream(message.ChatRoomID), realtime.Event{
			Type: "message.deleted",
			Data: map[string]string{"id": message.ID},
		})
	}
	return nil
}

// IsRoomMember reports whether the user belongs to the room.
func (s *ChatService) IsRoomMember(ctx context.Context, roomID, userID string) bool {
	var count int64
	s.db.WithContext(ensureContext(ctx)).Table("chat_room_members").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)
	return count > 0
}

func (s *ChatService) loadRoom(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, apperrors.NewBadRequest("Room id is required")
	}

	var room models.ChatRoom
	err := s.db.WithContext(ctx).First(&room, "id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chat service: load room: %w", err)
	}
	return &room, nil
}

func (s *ChatService) broadcast(roomID string, message models.Message) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(realtime.ChatStream(roomID), realtime.Event{
		Type: "message.created",
		Data: message,
	})
}

func (s *ChatService) notifyOthers(ctx context.Context, room *models.ChatRoom, message models.Message) {
	if s.notifications == nil {
		return
	}

	var memberIDs []string
	if err := s.db.WithContext(ctx).Table("chat_room_members").
		Where("chat_room_id = ?", room.ID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return
	}

	senderName := "Someone"
	if message.User != nil {
		senderName = message.User.Name
	}

	for _, memberID := range memberIDs {
		if memberID == message.UserID {
			continue
		}
		_, _ = s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  memberID,
			Type:    models.NotificationMessage,
			Message: senderName + " sent you a message",
			Link:    "/chats/" + room.ID,
		})
	}
}
