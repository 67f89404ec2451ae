package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// GroupHandler exposes group chats, membership, and messages.
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler constructs a group handler.
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List returns the caller's groups.
// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListForUser(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, groups)
}

type createGroupRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	ImageURL  string   `json:"image_url"`
	MemberIDs []string `json:"member_ids"`
}

// Create makes a group with the caller as admin.
// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	group, err := h.groups.Create(requestContext(c), services.CreateGroupInput{
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		CreatedBy: currentUserID(c),
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, group)
}

// Get returns a group with its members. Members only.
// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

type groupMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// AddMember adds a user to the group. Group admins only.
// POST /api/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req groupMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.groups.AddMember(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"added": true})
}

// RemoveMember removes a user from the group. Group admins only.
// DELETE /api/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	err := h.groups.RemoveMember(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("userId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// Leave removes the caller from the group.
// POST /api/groups/:id/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	if err := h.groups.Leave(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"left": true})
}

// ListMessages returns a group's messages oldest first. Members only.
// GET /api/groups/:id/messages
func (h *GroupHandler) ListMessages(c *gin.Context) {
	messages, err := h.groups.ListMessages(
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

type sendGroupMessageRequest struct {
	Content   string   `json:"content" validate:"omitempty,max=5000"`
	ImageURL  string   `json:"image_url"`
	VideoURL  string   `json:"video_url"`
	Documents []string `json:"documents"`
}

// SendMessage persists and broadcasts a message to the group.
// POST /api/groups/:id/messages
func (h *GroupHandler) SendMessage(c *gin.Context) {
	var req sendGroupMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.groups.SendMessage(requestContext(c), services.SendGroupMessageInput{
		GroupID:   strings.TrimSpace(c.Param("id")),
		UserID:    currentUserID(c),
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		VideoURL:  req.VideoURL,
		Documents: req.Documents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// DeleteMessage removes the caller's own group message.
// DELETE /api/group-messages/:id
func (h *GroupHandler) DeleteMessage(c *gin.Context) {
	if err := h.groups.DeleteMessage(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
