package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type ShuttleController struct {
	shuttles *services.ShuttleService
}

func NewShuttleController(shuttles *services.ShuttleService) *ShuttleController {
	return &ShuttleController{shuttles: shuttles}
}

func (h *ShuttleController) List(c *gin.Context) {
	shuttles, err := h.shuttles.List(c.Request.Context(), middleware.CurrentUniversityID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shuttles": shuttles})
}

func (h *ShuttleController) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "shuttle")
	if !ok {
		return
	}
	shuttle, err := h.shuttles.Get(c.Request.Context(), middleware.CurrentUniversityID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shuttle": shuttle})
}

func (h *ShuttleController) Create(c *gin.Context) {
	var input services.ShuttleInput
	if !bind(c, &input) {
		return
	}
	shuttle, err := h.shuttles.Create(c.Request.Context(), middleware.CurrentUniversityID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Shuttle created successfully", "shuttle": shuttle})
}

func (h *ShuttleController) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "shuttle")
	if !ok {
		return
	}
	var input services.ShuttleUpdate
	if !bind(c, &input) {
		return
	}
	shuttle, err := h.shuttles.Update(c.Request.Context(), middleware.CurrentUniversityID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shuttle updated successfully", "shuttle": shuttle})
}

func (h *ShuttleController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "shuttle")
	if !ok {
		return
	}
	if err := h.shuttles.Delete(c.Request.Context(), middleware.CurrentUniversityID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shuttle deleted successfully"})
}

func (h *ShuttleController) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "shuttle")
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	shuttle, err := h.shuttles.SetStatus(c.Request.Context(), middleware.CurrentUniversityID(c), id, *body.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shuttle status updated", "shuttle": shuttle})
}

func (h *ShuttleController) SetOccupancy(c *gin.Context) {
	id, ok := pathID(c, "id", "shuttle")
	if !ok {
		return
	}
	var body struct {
		Occupancy *int `json:"occupancy" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	shuttle, err := h.shuttles.SetOccupancy(c.Request.Context(), middleware.CurrentUniversityID(c), id, *body.Occupancy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Occupancy updated", "shuttle": shuttle})
}
