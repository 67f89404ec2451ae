package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// CommunityHandler exposes community CRUD and the join-request workflow.
type CommunityHandler struct {
	communities *services.CommunityService
}

// NewCommunityHandler constructs a community handler.
func NewCommunityHandler(communities *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

// List returns all communities with member counts.
// GET /api/communities
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communities.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, communities)
}

// Get returns a community. Private communities are redacted for outsiders.
// GET /api/communities/:id
func (h *CommunityHandler) Get(c *gin.Context) {
	detail, err := h.communities.Get(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), currentUserIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

type communityRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string `json:"image_url"`
	IsPrivate   *bool  `json:"is_private"`
}

// Create makes a community with the caller as first member and admin.
// POST /api/communities
func (h *CommunityHandler) Create(c *gin.Context) {
	var req communityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	community, err := h.communities.Create(requestContext(c), currentUserID(c), services.CommunityInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, community)
}

// Update changes community fields. Community admins only.
// PATCH /api/communities/:id
func (h *CommunityHandler) Update(c *gin.Context) {
	var req communityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	community, err := h.communities.Update(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), services.CommunityInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, community)
}

// Delete removes a community. Community admins only.
// DELETE /api/communities/:id
func (h *CommunityHandler) Delete(c *gin.Context) {
	if err := h.communities.Delete(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// RequestJoin files a join request against a private community.
// POST /api/communities/:id/join-requests
func (h *CommunityHandler) RequestJoin(c *gin.Context) {
	request, err := h.communities.RequestJoin(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// CancelJoinRequest withdraws the caller's pending join request.
// DELETE /api/communities/:id/join-requests
func (h *CommunityHandler) CancelJoinRequest(c *gin.Context) {
	if err := h.communities.CancelRequest(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// ApproveJoinRequest approves a pending request and adds the member.
// POST /api/communities/:id/join-requests/:userId/approve
func (h *CommunityHandler) ApproveJoinRequest(c *gin.Context) {
	err := h.communities.ApproveRequest(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("userId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"approved": true})
}

// RejectJoinRequest rejects a pending request.
// POST /api/communities/:id/join-requests/:userId/reject
func (h *CommunityHandler) RejectJoinRequest(c *gin.Context) {
	err := h.communities.RejectRequest(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("userId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rejected": true})
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// AddMember adds a user directly. Community admins only.
// POST /api/communities/:id/members
func (h *CommunityHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	err := h.communities.AddMember(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"added": true})
}
