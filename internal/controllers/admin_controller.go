package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type AdminController struct {
	users *services.UserService
}

func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{users: users}
}

// Users lists the students of the admin's university.
func (h *AdminController) Users(c *gin.Context) {
	users, err := h.users.ListStudents(c.Request.Context(), middleware.CurrentUniversityID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
