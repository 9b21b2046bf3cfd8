package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type RouteController struct {
	routes *services.RouteService
}

func NewRouteController(routes *services.RouteService) *RouteController {
	return &RouteController{routes: routes}
}

// BestRoutes lists bookable routes between two stops.
func (h *RouteController) BestRoutes(c *gin.Context) {
	var body struct {
		Source      uint `json:"source"`
		Destination uint `json:"destination"`
	}
	if !bind(c, &body) {
		return
	}
	matches, err := h.routes.BestRoutes(c.Request.Context(), middleware.CurrentUniversityID(c), body.Source, body.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_routes": matches})
}

func (h *RouteController) Create(c *gin.Context) {
	var input services.RouteInput
	if !bind(c, &input) {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), middleware.CurrentUniversityID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Route created successfully", "route": route})
}

func (h *RouteController) List(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context(), middleware.CurrentUniversityID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func (h *RouteController) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "route")
	if !ok {
		return
	}
	route, err := h.routes.Get(c.Request.Context(), middleware.CurrentUniversityID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

func (h *RouteController) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "route")
	if !ok {
		return
	}
	var input services.RouteInput
	if !bind(c, &input) {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), middleware.CurrentUniversityID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route updated successfully", "route": route})
}

func (h *RouteController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "route")
	if !ok {
		return
	}
	if err := h.routes.Delete(c.Request.Context(), middleware.CurrentUniversityID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
