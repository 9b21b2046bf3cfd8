package routes

import "github.com/gin-gonic/gin"

func WebSocketRoutes(r *gin.Engine, h handlers) {
	ws := r.Group("/ws")
	{
		ws.GET("/shuttles", h.ws.Shuttles)
	}
}
