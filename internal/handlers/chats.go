package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// ChatHandler exposes direct chat rooms and messages.
type ChatHandler struct {
	chats *services.ChatService
}

// NewChatHandler constructs a chat handler.
func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// ListRooms returns the caller's rooms, most recently active first.
// GET /api/chats
func (h *ChatHandler) ListRooms(c *gin.Context) {
	rooms, err := h.chats.ListRooms(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rooms)
}

type openRoomRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// OpenRoom returns the room with another user, creating it on first contact.
// POST /api/chats
func (h *ChatHandler) OpenRoom(c *gin.Context) {
	var req openRoomRequest
	if !bindAndValidate(c, &req) {
		return
	}

	room, err := h.chats.GetOrCreateRoom(requestContext(c), currentUserID(c), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

// ListMessages returns a room's messages oldest first.
// GET /api/chats/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.chats.ListMessages(
		requestContext(c),
		currentUserID(c),
		strings.TrimSpace(c.Param("id")),
		parseIntQuery(c, "limit", 50),
		parseIntQuery(c, "offset", 0),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Text      string   `json:"text" validate:"omitempty,max=5000"`
	Image     string   `json:"image"`
	Video     string   `json:"video"`
	Documents []string `json:"documents"`
}

// SendMessage persists and broadcasts a message to the room.
// POST /api/chats/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.chats.SendMessage(requestContext(c), services.SendMessageInput{
		RoomID:    strings.TrimSpace(c.Param("id")),
		UserID:    currentUserID(c),
		Text:      req.Text,
		Image:     req.Image,
		Video:     req.Video,
		Documents: req.Documents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// DeleteMessage removes the caller's own message.
// DELETE /api/chat-messages/:id
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	if err := h.chats.DeleteMessage(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
