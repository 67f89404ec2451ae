package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/middleware"
	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/errors"
	"github.com/universe-app/universe/pkg/metrics"
	"github.com/universe-app/universe/pkg/response"
)

// AuthHandler manages the signup and login flows.
type AuthHandler struct {
	users    *services.UserService
	auth     *services.AuthService
	otp      *services.OTPService
	sessions *iauth.SessionService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService, auth *services.AuthService, otp *services.OTPService, sessions *iauth.SessionService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, otp: otp, sessions: sessions}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	USN   string `json:"usn" validate:"required,usn"`
}

// SendOTP checks signup eligibility and emails a one-time code.
// POST /api/auth/otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	if err := h.auth.CheckPreapproved(ctx, req.Email, req.USN); err != nil {
		metrics.AuthAttempts.WithLabelValues("otp", "failure").Inc()
		response.Error(c, err)
		return
	}
	if err := h.otp.Send(ctx, req.Email); err != nil {
		metrics.AuthAttempts.WithLabelValues("otp", "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("otp", "success").Inc()
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	USN      string `json:"usn" validate:"required,usn"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code" validate:"required"`
	ImageURL string `json:"image_url"`
	About    string `json:"about"`
}

// Signup verifies the one-time code and registers the account.
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	if err := h.auth.CheckPreapproved(ctx, req.Email, req.USN); err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		response.Error(c, err)
		return
	}
	if err := h.otp.Verify(ctx, req.Email, req.Code); err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		response.Error(c, err)
		return
	}

	user, err := h.users.Signup(ctx, services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		USN:      req.USN,
		Password: req.Password,
		ImageURL: req.ImageURL,
		About:    req.About,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		response.Error(c, err)
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	response.Success(c, http.StatusCreated, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   user,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates with email and password.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token into a new token pair.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout revokes the current session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.CtxSessionIDKey)
	if sessionID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated user's own profile.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), userID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword emails a reset link. The response is identical whether or
// not the address has an account.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ForgotPassword(requestContext(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token and sets a new password.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(requestContext(c), strings.TrimSpace(req.Token), req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
