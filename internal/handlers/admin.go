package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// AdminHandler exposes the moderation dashboard endpoints. Every route sits
// behind the admin middleware.
type AdminHandler struct {
	admin       *services.AdminService
	users       *services.UserService
	posts       *services.PostService
	communities *services.CommunityService
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(admin *services.AdminService, users *services.UserService, posts *services.PostService, communities *services.CommunityService) *AdminHandler {
	return &AdminHandler{admin: admin, users: users, posts: posts, communities: communities}
}

// ListUsers returns users with post and follower counts.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	users, total, err := h.admin.ListUsers(requestContext(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  int(total),
	})
}

// DeleteUser removes any account.
// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	err := h.users.Delete(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListCommunities returns all communities with member counts.
// GET /api/admin/communities
func (h *AdminHandler) ListCommunities(c *gin.Context) {
	communities, err := h.communities.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, communities)
}

// ListReports returns post reports, optionally filtered by status.
// GET /api/admin/reports
func (h *AdminHandler) ListReports(c *gin.Context) {
	reports, err := h.admin.ListReports(requestContext(c), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reports)
}

type resolveReportRequest struct {
	HidePost bool `json:"hide_post"`
}

// ResolveReport marks a report resolved, optionally hiding the post.
// POST /api/admin/reports/:id/resolve
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	var req resolveReportRequest
	if c.Request != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	report, err := h.admin.ResolveReport(requestContext(c), strings.TrimSpace(c.Param("id")), req.HidePost)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// DismissReport marks a report dismissed.
// POST /api/admin/reports/:id/dismiss
func (h *AdminHandler) DismissReport(c *gin.Context) {
	report, err := h.admin.DismissReport(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// HidePost hides a post from non-admin feeds.
// POST /api/admin/posts/:id/hide
func (h *AdminHandler) HidePost(c *gin.Context) {
	if err := h.posts.SetHidden(requestContext(c), strings.TrimSpace(c.Param("id")), true); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"hidden": true})
}

// UnhidePost restores a hidden post.
// POST /api/admin/posts/:id/unhide
func (h *AdminHandler) UnhidePost(c *gin.Context) {
	if err := h.posts.SetHidden(requestContext(c), strings.TrimSpace(c.Param("id")), false); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"hidden": false})
}

// ListPreApproved returns the pre-approved student roster.
// GET /api/admin/students
func (h *AdminHandler) ListPreApproved(c *gin.Context) {
	students, err := h.admin.ListPreApproved(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, students)
}

type preApprovedRequest struct {
	Email string `json:"email" validate:"required,email"`
	USN   string `json:"usn" validate:"required,usn"`
}

// AddPreApproved registers a student email and USN pair for signup.
// POST /api/admin/students
func (h *AdminHandler) AddPreApproved(c *gin.Context) {
	var req preApprovedRequest
	if !bindAndValidate(c, &req) {
		return
	}

	student, err := h.admin.AddPreApproved(requestContext(c), req.Email, req.USN)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// RemovePreApproved drops a roster entry.
// DELETE /api/admin/students/:id
func (h *AdminHandler) RemovePreApproved(c *gin.Context) {
	if err := h.admin.RemovePreApproved(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetSettings returns the dashboard settings singleton.
// GET /api/admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.admin.GetSettings(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

type settingsRequest struct {
	DarkMode       bool `json:"dark_mode"`
	EmailAlerts    bool `json:"email_alerts"`
	SessionTimeout int  `json:"session_timeout" validate:"required,min=1"`
}

// UpdateSettings replaces the dashboard settings.
// PUT /api/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.admin.UpdateSettings(requestContext(c), req.DarkMode, req.EmailAlerts, req.SessionTimeout)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}
