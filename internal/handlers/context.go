package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

func currentUserIsAdmin(c *gin.Context) bool {
	return c.GetBool(middleware.CtxIsAdminKey)
}
