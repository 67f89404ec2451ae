package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerChatRoutes(api *gin.RouterGroup, chats *handlers.ChatHandler, groups *handlers.GroupHandler) {
	chatGroup := api.Group("/chats")
	{
		chatGroup.GET("", chats.ListRooms)
		chatGroup.POST("", chats.OpenRoom)
		chatGroup.GET("/:id/messages", chats.ListMessages)
		chatGroup.POST("/:id/messages", chats.SendMessage)
	}
	api.DELETE("/chat-messages/:id", chats.DeleteMessage)

	groupGroup := api.Group("/groups")
	{
		groupGroup.GET("", groups.List)
		groupGroup.POST("", groups.Create)
		groupGroup.GET("/:id", groups.Get)
		groupGroup.POST("/:id/members", groups.AddMember)
		groupGroup.DELETE("/:id/members/:userId", groups.RemoveMember)
		groupGroup.POST("/:id/leave", groups.Leave)
		groupGroup.GET("/:id/messages", groups.ListMessages)
		groupGroup.POST("/:id/messages", groups.SendMessage)
	}
	api.DELETE("/group-messages/:id", groups.DeleteMessage)
}
