package routes

import "github.com/gin-gonic/gin"

func RouteRoutes(r *gin.RouterGroup, h handlers) {
	route := r.Group("/route")
	{
		route.POST("/best-routes", h.requireAuth, h.routes.BestRoutes)

		route.POST("", h.requireAdmin, h.routes.Create)
		route.GET("", h.requireAdmin, h.routes.List)
		route.GET("/:id", h.requireAdmin, h.routes.Get)
		route.PUT("/:id", h.requireAdmin, h.routes.Update)
		route.DELETE("/:id", h.requireAdmin, h.routes.Delete)
	}
}
