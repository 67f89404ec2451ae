package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/universe-app/universe/internal/auth"
	"github.com/universe-app/universe/internal/realtime"
	"github.com/universe-app/universe/pkg/errors"
	"github.com/universe-app/universe/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated WebSocket
// streams for chat rooms and groups. Stream authorization (room or group
// membership) is enforced by the hub's authorizer.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *iauth.JWTService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// Stream validates the caller and upgrades the request to the realtime hub.
// Initial subscriptions come from repeated `stream` query parameters, e.g.
// /api/realtime?stream=chat:<roomID>&stream=group:<groupID>.
// GET /api/realtime
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := websocketToken(c)
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(userID, gatherStreams(c), c.Writer, c.Request)
}

func gatherStreams(c *gin.Context) []string {
	var streams []string
	for _, stream := range c.QueryArray("stream") {
		stream = strings.TrimSpace(stream)
		if stream == "" {
			continue
		}
		streams = append(streams, stream)
	}
	return streams
}
