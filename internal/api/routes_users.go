package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	users := api.Group("/users")
	{
		users.GET("", handler.Search)
		users.PATCH("/me", handler.UpdateProfile)
		users.GET("/:id", handler.Get)
		users.DELETE("/:id", handler.Delete)
		users.POST("/:id/follow", handler.Follow)
		users.DELETE("/:id/follow", handler.Unfollow)
	}

	requests := api.Group("/follow-requests")
	{
		requests.GET("", handler.ListFollowRequests)
		requests.POST("/:id/accept", handler.AcceptFollowRequest)
		requests.POST("/:id/reject", handler.RejectFollowRequest)
		requests.DELETE("/:id", handler.CancelFollowRequest)
	}
}
