package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type StopController struct {
	stops *services.StopService
}

func NewStopController(stops *services.StopService) *StopController {
	return &StopController{stops: stops}
}

func (h *StopController) List(c *gin.Context) {
	stops, err := h.stops.List(c.Request.Context(), middleware.CurrentUniversityID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (h *StopController) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "stop")
	if !ok {
		return
	}
	stop, err := h.stops.Get(c.Request.Context(), middleware.CurrentUniversityID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

func (h *StopController) Create(c *gin.Context) {
	var input services.StopInput
	if !bind(c, &input) {
		return
	}
	stop, err := h.stops.Create(c.Request.Context(), middleware.CurrentUniversityID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Stop created successfully", "stop": stop})
}

func (h *StopController) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "stop")
	if !ok {
		return
	}
	var input services.StopInput
	if !bind(c, &input) {
		return
	}
	stop, err := h.stops.Update(c.Request.Context(), middleware.CurrentUniversityID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop updated successfully", "stop": stop})
}

func (h *StopController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "stop")
	if !ok {
		return
	}
	if err := h.stops.Delete(c.Request.Context(), middleware.CurrentUniversityID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop deleted successfully"})
}
