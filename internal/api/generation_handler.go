package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/models"
)

// maxHistoryLimit caps the ?limit= query on GET /generations.
const maxHistoryLimit = 200

// GenerationHandler handles render, edit and history endpoints.
type GenerationHandler struct {
	generationService core.GenerationService
	logger            *zap.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(gs core.GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{generationService: gs, logger: logger}
}

// CreateGeneration handles POST /generations
func (h *GenerationHandler) CreateGeneration(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	var cfg models.ThumbnailConfig
	if !bindJSON(c, &cfg) {
		return
	}
	result, err := h.generationService.Create(c.Request.Context(), identity, cfg)
	if err != nil {
		mapGenerationErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// EditGeneration handles POST /generations/edit
func (h *GenerationHandler) EditGeneration(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	var req models.EditRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generationService.Edit(c.Request.Context(), identity, req)
	if err != nil {
		mapGenerationErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListGenerations handles GET /generations?limit=N
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	limit := db.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}
	gens, err := h.generationService.History(c.Request.Context(), identity.UID, limit)
	if err != nil {
		mapGenerationErrorToStatus(c, h.logger, err)
		return
	}
	if gens == nil {
		gens = []*models.Generation{}
	}
	c.JSON(http.StatusOK, gens)
}
