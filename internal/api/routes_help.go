package api

import (
	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/handlers"
)

func registerHelpRoutes(r *gin.Engine, handler *handlers.HelpHandler) {
	// The help form is reachable without an account.
	r.POST("/api/help", handler.Submit)
}
