package routes

import "github.com/gin-gonic/gin"

func BookingRoutes(r *gin.RouterGroup, h handlers) {
	booking := r.Group("/booking")
	{
		booking.POST("", h.requireAuth, h.bookings.Create)
		booking.POST("/cancel", h.requireAuth, h.bookings.Cancel)
		booking.GET("", h.requireAuth, h.bookings.List)
		booking.GET("/upcoming", h.requireAuth, h.bookings.Upcoming)
		booking.GET("/:id/ticket", h.requireAuth, h.bookings.Ticket)

		booking.GET("/admin/:userId", h.requireAdmin, h.bookings.ForUser)
	}
}
