package routes

import "github.com/gin-gonic/gin"

func StopRoutes(r *gin.RouterGroup, h handlers) {
	stop := r.Group("/stop")
	{
		stop.GET("", h.requireAuth, h.stops.List)
		stop.GET("/:id", h.requireAuth, h.stops.Get)

		stop.POST("", h.requireAdmin, h.stops.Create)
		stop.PUT("/:id", h.requireAdmin, h.stops.Update)
		stop.DELETE("/:id", h.requireAdmin, h.stops.Delete)
	}
}
