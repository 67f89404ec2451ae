package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// PostHandler exposes the post feed and per-post actions.
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

// NewPostHandler constructs a post handler.
func NewPostHandler(posts *services.PostService, comments *services.CommentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

// Feed returns posts visible to the caller, newest first.
// GET /api/posts
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.posts.Feed(requestContext(c), services.FeedInput{
		ViewerID:    currentUserID(c),
		ViewerAdmin: currentUserIsAdmin(c),
		Limit:       parseIntQuery(c, "limit", 20),
		Offset:      parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts)
}

type createPostRequest struct {
	Type  string `json:"type"`
	Text  string `json:"text" validate:"omitempty,max=5000"`
	Image string `json:"image"`
	Video string `json:"video"`
}

// Create publishes a new post.
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.posts.Create(requestContext(c), currentUserID(c), services.CreatePostInput{
		Type:  req.Type,
		Text:  req.Text,
		Image: req.Image,
		Video: req.Video,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, post)
}

// Get returns a single post with its likes and comments.
// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), currentUserIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, post)
}

// Delete removes a post. Owners and admins only.
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	err := h.posts.Delete(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), currentUserIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Like records a like and notifies the author.
// POST /api/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	if err := h.posts.Like(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": true})
}

// Unlike removes a like.
// DELETE /api/posts/:id/like
func (h *PostHandler) Unlike(c *gin.Context) {
	if err := h.posts.Unlike(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": false})
}

// Save bookmarks a post for the caller.
// POST /api/posts/:id/save
func (h *PostHandler) Save(c *gin.Context) {
	if err := h.posts.Save(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// Unsave removes a bookmark.
// DELETE /api/posts/:id/save
func (h *PostHandler) Unsave(c *gin.Context) {
	if err := h.posts.Unsave(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": false})
}

type reportPostRequest struct {
	Reason      string `json:"reason" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// Report files a complaint about a post for admin review.
// POST /api/posts/:id/report
func (h *PostHandler) Report(c *gin.Context) {
	var req reportPostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	report, err := h.posts.Report(requestContext(c), services.ReportPostInput{
		PostID:      strings.TrimSpace(c.Param("id")),
		ReporterID:  currentUserID(c),
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, report)
}

type createCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CreateComment adds a comment and notifies the post author.
// POST /api/posts/:id/comments
func (h *PostHandler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.comments.Create(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}

// ListComments returns a post's comments oldest first.
// GET /api/posts/:id/comments
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.comments.List(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, comments)
}

// DeleteComment removes a comment. Owners and admins only.
// DELETE /api/comments/:id
func (h *PostHandler) DeleteComment(c *gin.Context) {
	err := h.comments.Delete(requestContext(c), currentUserID(c), strings.TrimSpace(c.Param("id")), currentUserIsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
