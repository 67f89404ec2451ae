package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/app"
	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/cache"
	"github.com/universe-app/universe/internal/handlers"
	"github.com/universe-app/universe/internal/middleware"
	"github.com/universe-app/universe/internal/notifications"
	"github.com/universe-app/universe/internal/realtime"
	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/mail"
)

// Dependencies carries the shared infrastructure the router wires handlers to.
type Dependencies struct {
	DB              *gorm.DB
	Config          *app.Config
	JWT             *iauth.JWTService
	Sessions        *iauth.SessionService
	Store           cache.Store
	Mailer          mail.Mailer
	RealtimeHub     *realtime.Hub
	NotificationHub *notifications.Hub
}

// NewRouter builds the Gin engine, wires middleware, and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	notificationSvc, err := services.NewNotificationService(deps.DB, deps.NotificationHub)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.DB)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(deps.DB, deps.Sessions, deps.Mailer, services.AuthConfig{
		AdminEmail: deps.Config.Admin.Email,
		ResetTTL:   deps.Config.Auth.Reset.TTL,
		BaseURL:    deps.Config.App.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	otpSvc, err := services.NewOTPService(deps.DB, deps.Mailer, services.OTPConfig{
		Digits: deps.Config.Auth.OTP.Digits,
		TTL:    deps.Config.Auth.OTP.TTL,
	})
	if err != nil {
		return nil, err
	}
	followSvc, err := services.NewFollowService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	postSvc, err := services.NewPostService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	commentSvc, err := services.NewCommentService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	communitySvc, err := services.NewCommunityService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	chatSvc, err := services.NewChatService(deps.DB, deps.RealtimeHub, notificationSvc)
	if err != nil {
		return nil, err
	}
	groupSvc, err := services.NewGroupService(deps.DB, deps.RealtimeHub, notificationSvc)
	if err != nil {
		return nil, err
	}
	eventSvc, err := services.NewEventService(deps.DB)
	if err != nil {
		return nil, err
	}
	announcementSvc, err := services.NewAnnouncementService(deps.DB)
	if err != nil {
		return nil, err
	}
	helpSvc, err := services.NewHelpService(deps.DB)
	if err != nil {
		return nil, err
	}
	adminSvc, err := services.NewAdminService(deps.DB)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if deps.Store != nil {
		// Basic rate limiting: 100 requests/minute per IP+path
		r.Use(middleware.RateLimit(deps.Store, 100, time.Minute))
	}
	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(userSvc, authSvc, otpSvc, deps.Sessions)
	userHandler := handlers.NewUserHandler(userSvc, followSvc)
	postHandler := handlers.NewPostHandler(postSvc, commentSvc)
	communityHandler := handlers.NewCommunityHandler(communitySvc)
	chatHandler := handlers.NewChatHandler(chatSvc)
	groupHandler := handlers.NewGroupHandler(groupSvc)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, deps.NotificationHub, deps.JWT)
	realtimeHandler := handlers.NewRealtimeHandler(deps.RealtimeHub, deps.JWT)
	eventHandler := handlers.NewEventHandler(eventSvc)
	announcementHandler := handlers.NewAnnouncementHandler(announcementSvc)
	helpHandler := handlers.NewHelpHandler(helpSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc, userSvc, postSvc, communitySvc)

	registerAuthRoutes(r, authHandler, deps.JWT)
	registerHelpRoutes(r, helpHandler)

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	registerUserRoutes(api, userHandler)
	registerPostRoutes(api, postHandler)
	registerCommunityRoutes(api, communityHandler)
	registerChatRoutes(api, chatHandler, groupHandler)
	registerNotificationRoutes(r, api, notificationHandler, realtimeHandler)
	registerCampusRoutes(api, eventHandler, announcementHandler)
	registerAdminRoutes(api, adminHandler, eventHandler, announcementHandler, helpHandler)

	return r, nil
}
