package routes

import "github.com/gin-gonic/gin"

func AuthRoutes(r *gin.RouterGroup, h handlers) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.auth.Register)
		auth.POST("/login", h.auth.Login)
	}
}
