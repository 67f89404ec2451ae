package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerCommunityRoutes(api *gin.RouterGroup, handler *handlers.CommunityHandler) {
	communities := api.Group("/communities")
	{
		communities.GET("", handler.List)
		communities.POST("", handler.Create)
		communities.GET("/:id", handler.Get)
		communities.PATCH("/:id", handler.Update)
		communities.DELETE("/:id", handler.Delete)
		communities.POST("/:id/members", handler.AddMember)
		communities.POST("/:id/join-requests", handler.RequestJoin)
		communities.DELETE("/:id/join-requests", handler.CancelJoinRequest)
		communities.POST("/:id/join-requests/:userId/approve", handler.ApproveJoinRequest)
		communities.POST("/:id/join-requests/:userId/reject", handler.RejectJoinRequest)
	}
}
