package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerNotificationRoutes(r *gin.Engine, api *gin.RouterGroup, notifications *handlers.NotificationHandler, realtimeHandler *handlers.RealtimeHandler) {
	group := api.Group("/notifications")
	{
		group.GET("", notifications.List)
		group.PUT("/read-all", notifications.MarkAllRead)
		group.POST("/:id/read", notifications.MarkRead)
		group.DELETE("/:id", notifications.Delete)
	}

	// WebSocket endpoints authenticate via query token and sit outside the
	// header-based auth middleware.
	r.GET("/api/notifications/stream", notifications.Stream)
	r.GET("/api/realtime", realtimeHandler.Stream)
}
