package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
	"github.com/universe-app/universe/internal/middleware"
)

func registerAdminRoutes(api *gin.RouterGroup, admin *handlers.AdminHandler, events *handlers.EventHandler, announcements *handlers.AnnouncementHandler, help *handlers.HelpHandler) {
	group := api.Group("/admin")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("/users", admin.ListUsers)
		group.DELETE("/users/:id", admin.DeleteUser)
		group.GET("/communities", admin.ListCommunities)

		group.GET("/reports", admin.ListReports)
		group.POST("/reports/:id/resolve", admin.ResolveReport)
		group.POST("/reports/:id/dismiss", admin.DismissReport)
		group.POST("/posts/:id/hide", admin.HidePost)
		group.POST("/posts/:id/unhide", admin.UnhidePost)

		group.GET("/students", admin.ListPreApproved)
		group.POST("/students", admin.AddPreApproved)
		group.DELETE("/students/:id", admin.RemovePreApproved)

		group.GET("/settings", admin.GetSettings)
		group.PUT("/settings", admin.UpdateSettings)

		group.POST("/events", events.Create)
		group.PUT("/events/:id", events.Update)
		group.DELETE("/events/:id", events.Delete)

		group.POST("/announcements", announcements.Create)
		group.PUT("/announcements/:id", announcements.Update)
		group.DELETE("/announcements/:id", announcements.Delete)

		group.GET("/help", help.List)
		group.PATCH("/help/:id", help.UpdateStatus)
		group.DELETE("/help/:id", help.Delete)
	}
}
