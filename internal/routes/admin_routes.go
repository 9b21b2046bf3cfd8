package routes

import "github.com/gin-gonic/gin"

func AdminRoutes(r *gin.RouterGroup, h handlers) {
	admin := r.Group("/admin")
	admin.Use(h.requireAdmin)
	{
		admin.GET("/users", h.admin.Users)
	}
}
