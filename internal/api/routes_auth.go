package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/handlers"
	"github.com/universe-app/universe/internal/middleware"
)

func registerAuthRoutes(r *gin.Engine, handler *handlers.AuthHandler, jwt *iauth.JWTService) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/otp", handler.SendOTP)
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
		auth.POST("/forgot-password", handler.ForgotPassword)
		auth.POST("/reset-password", handler.ResetPassword)
	}

	authed := r.Group("/api/auth")
	authed.Use(middleware.Auth(jwt))
	{
		authed.GET("/me", handler.Me)
		authed.POST("/logout", handler.Logout)
	}
}
