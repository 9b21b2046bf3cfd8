package routes

import "github.com/gin-gonic/gin"

func ShuttleRoutes(r *gin.RouterGroup, h handlers) {
	shuttle := r.Group("/shuttle")
	{
		shuttle.GET("", h.requireAuth, h.shuttles.List)
		shuttle.GET("/:id", h.requireAuth, h.shuttles.Get)
		shuttle.PATCH("/:id/occupancy", h.requireAuth, h.shuttles.SetOccupancy)

		shuttle.POST("", h.requireAdmin, h.shuttles.Create)
		shuttle.PUT("/:id", h.requireAdmin, h.shuttles.Update)
		shuttle.DELETE("/:id", h.requireAdmin, h.shuttles.Delete)
		shuttle.PATCH("/:id/status", h.requireAdmin, h.shuttles.SetStatus)
	}
}
