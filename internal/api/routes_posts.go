package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerPostRoutes(api *gin.RouterGroup, handler *handlers.PostHandler) {
	posts := api.Group("/posts")
	{
		posts.GET("", handler.Feed)
		posts.POST("", handler.Create)
		posts.GET("/:id", handler.Get)
		posts.DELETE("/:id", handler.Delete)
		posts.POST("/:id/like", handler.Like)
		posts.DELETE("/:id/like", handler.Unlike)
		posts.POST("/:id/save", handler.Save)
		posts.DELETE("/:id/save", handler.Unsave)
		posts.POST("/:id/report", handler.Report)
		posts.GET("/:id/comments", handler.ListComments)
		posts.POST("/:id/comments", handler.CreateComment)
	}

	api.DELETE("/comments/:id", handler.DeleteComment)
}
