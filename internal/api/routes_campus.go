package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerCampusRoutes(api *gin.RouterGroup, events *handlers.EventHandler, announcements *handlers.AnnouncementHandler) {
	eventGroup := api.Group("/events")
	{
		eventGroup.GET("", events.List)
		eventGroup.GET("/:id", events.Get)
	}

	announcementGroup := api.Group("/announcements")
	{
		announcementGroup.GET("", announcements.List)
		announcementGroup.GET("/:id", announcements.Get)
	}
}
