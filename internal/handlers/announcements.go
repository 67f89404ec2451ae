package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// AnnouncementHandler exposes campus announcements. Writes sit behind the
// admin middleware.
type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(announcements *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// List returns announcements newest first.
// GET /api/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	announcements, err := h.announcements.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcements)
}

// Get returns a single announcement.
// GET /api/announcements/:id
func (h *AnnouncementHandler) Get(c *gin.Context) {
	announcement, err := h.announcements.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcement)
}

type announcementRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"required,max=10000"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	Attachments []string `json:"attachments"`
}

// Create adds an announcement.
// POST /api/admin/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req announcementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	announcement, err := h.announcements.Create(requestContext(c), services.AnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, announcement)
}

// Update replaces an announcement's fields.
// PUT /api/admin/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req announcementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	announcement, err := h.announcements.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.AnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, announcement)
}

// Delete removes an announcement.
// DELETE /api/admin/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcements.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
