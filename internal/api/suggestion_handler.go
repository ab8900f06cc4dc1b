package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/models"
)

// SuggestionHandler exposes AI strategy suggestions and virality audits.
type SuggestionHandler struct {
	suggestionService core.SuggestionService
	logger            *zap.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(ss core.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: ss, logger: logger}
}

// Suggest handles POST /suggestions
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	if _, ok := identityFrom(c); !ok {
		return
	}
	var req SuggestRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.suggestionService.Suggest(c.Request.Context(), req.Topic)
	if err != nil {
		mapGenerationErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Audit handles POST /audits
func (h *SuggestionHandler) Audit(c *gin.Context) {
	if _, ok := identityFrom(c); !ok {
		return
	}
	var cfg models.ThumbnailConfig
	if !bindJSON(c, &cfg) {
		return
	}
	out, err := h.suggestionService.Audit(c.Request.Context(), cfg)
	if err != nil {
		mapGenerationErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
