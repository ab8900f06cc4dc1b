package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thumblytic-backend-go/internal/config"
)

// PlansHandler serves the public pricing catalog.
type PlansHandler struct {
	catalog *config.PlanCatalog
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(catalog *config.PlanCatalog) *PlansHandler {
	return &PlansHandler{catalog: catalog}
}

// ListPlans handles GET /plans
func (h *PlansHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}
