package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// UserHandler exposes profile and follow endpoints.
type UserHandler struct {
	users   *services.UserService
	follows *services.FollowService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(users *services.UserService, follows *services.FollowService) *UserHandler {
	return &UserHandler{users: users, follows: follows}
}

// Get returns a user's profile.
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Search finds users by name, tag, or email.
// GET /api/users?q=
func (h *UserHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.Success(c, http.StatusOK, []struct{}{})
		return
	}

	users, err := h.users.Search(requestContext(c), query, parseIntQuery(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

type updateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	ImageURL  *string `json:"image_url"`
	BgImage   *string `json:"bg_image"`
	About     *string `json:"about" validate:"omitempty,max=500"`
	Tag       *string `json:"tag" validate:"omitempty,max=50"`
	IsPrivate *bool   `json:"is_private"`
}

// UpdateProfile changes the caller's own profile fields.
// PATCH /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), currentUserID(c), services.UpdateProfileInput{
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		BgImage:   req.BgImage,
		About:     req.About,
		Tag:       req.Tag,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Delete removes an account. Users may delete themselves; admins anyone.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	err := h.users.Delete(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), currentUserIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Follow follows a public user or files a request against a private one.
// POST /api/users/:id/follow
func (h *UserHandler) Follow(c *gin.Context) {
	result, err := h.follows.Follow(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Unfollow removes a follow edge.
// DELETE /api/users/:id/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.follows.Unfollow(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"following": false})
}

// ListFollowRequests returns pending requests addressed to the caller.
// GET /api/follow-requests
func (h *UserHandler) ListFollowRequests(c *gin.Context) {
	requests, err := h.follows.ListRequests(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

// AcceptFollowRequest accepts a pending request.
// POST /api/follow-requests/:id/accept
func (h *UserHandler) AcceptFollowRequest(c *gin.Context) {
	if err := h.follows.Accept(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accepted": true})
}

// RejectFollowRequest rejects a pending request.
// POST /api/follow-requests/:id/reject
func (h *UserHandler) RejectFollowRequest(c *gin.Context) {
	if err := h.follows.Reject(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rejected": true})
}

// CancelFollowRequest withdraws the caller's own pending request.
// DELETE /api/follow-requests/:id
func (h *UserHandler) CancelFollowRequest(c *gin.Context) {
	if err := h.follows.Cancel(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
