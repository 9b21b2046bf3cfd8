package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

func (h *BookingController) Create(c *gin.Context) {
	var input services.BookingInput
	if !bind(c, &input) {
		return
	}
	receipt, err := h.bookings.Create(c.Request.Context(), middleware.CurrentUniversityID(c), middleware.CurrentUserID(c), input)
	if err != nil {
		respondErrorAs(c, err, "Booking failed.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Ride booked successfully!",
		"booking":        receipt.Booking,
		"fare":           receipt.Fare,
		"estimated_time": receipt.EstimatedTime,
	})
}

func (h *BookingController) Cancel(c *gin.Context) {
	var body struct {
		BookingID uint `json:"booking_id"`
	}
	if !bind(c, &body) {
		return
	}
	booking, err := h.bookings.Cancel(c.Request.Context(), middleware.CurrentUniversityID(c), middleware.CurrentUserID(c), body.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": booking})
}

func (h *BookingController) List(c *gin.Context) {
	views, err := h.bookings.List(c.Request.Context(), middleware.CurrentUniversityID(c), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

func (h *BookingController) Upcoming(c *gin.Context) {
	views, err := h.bookings.Upcoming(c.Request.Context(), middleware.CurrentUniversityID(c), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// ForUser is the admin view of one user's bookings.
func (h *BookingController) ForUser(c *gin.Context) {
	userID, ok := pathID(c, "userId", "user")
	if !ok {
		return
	}
	views, err := h.bookings.ListForUser(c.Request.Context(), middleware.CurrentUniversityID(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

func (h *BookingController) Ticket(c *gin.Context) {
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	pdf, name, err := h.bookings.Ticket(c.Request.Context(), middleware.CurrentUniversityID(c), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
