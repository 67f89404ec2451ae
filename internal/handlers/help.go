package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// HelpHandler exposes the public help form and its admin review endpoints.
type HelpHandler struct {
	help *services.HelpService
}

// NewHelpHandler constructs a help handler.
func NewHelpHandler(help *services.HelpService) *HelpHandler {
	return &HelpHandler{help: help}
}

type helpRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit records a help message. No authentication required.
// POST /api/help
func (h *HelpHandler) Submit(c *gin.Context) {
	var req helpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.help.Submit(requestContext(c), req.Email, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// List returns help messages, optionally filtered by status.
// GET /api/admin/help
func (h *HelpHandler) List(c *gin.Context) {
	messages, err := h.help.List(requestContext(c), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

type helpStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves a help message between open and resolved.
// PATCH /api/admin/help/:id
func (h *HelpHandler) UpdateStatus(c *gin.Context) {
	var req helpStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.help.UpdateStatus(requestContext(c), strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, message)
}

// Delete removes a help message.
// DELETE /api/admin/help/:id
func (h *HelpHandler) Delete(c *gin.Context) {
	if err := h.help.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
