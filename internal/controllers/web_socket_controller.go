package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/realtime"
)

type WebSocketController struct {
	hub    *realtime.Hub
	tokens *auth.TokenManager
}

func NewWebSocketController(hub *realtime.Hub, tokens *auth.TokenManager) *WebSocketController {
	return &WebSocketController{hub: hub, tokens: tokens}
}

// Shuttles subscribes the caller to occupancy events of their university.
// Browsers cannot set headers on a websocket, so the token is a query param.
func (h *WebSocketController) Shuttles(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, middleware.ErrorBody(c, "No token, authorization denied"))
		return
	}
	claims, err := h.tokens.Validate(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, middleware.ErrorBody(c, "Token is not valid"))
		return
	}

	conn, err := realtime.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Warn("websocket upgrade failed")
		return
	}
	h.hub.Serve(claims.UniversityID, conn)
}
