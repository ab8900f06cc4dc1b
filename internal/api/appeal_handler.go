package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/models"
)

// AppealHandler handles plan appeals submitted by users.
type AppealHandler struct {
	appealService core.AppealService
	logger        *zap.Logger
}

// NewAppealHandler creates a new AppealHandler.
func NewAppealHandler(as core.AppealService, logger *zap.Logger) *AppealHandler {
	return &AppealHandler{appealService: as, logger: logger}
}

// SubmitAppeal handles POST /appeals
func (h *AppealHandler) SubmitAppeal(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	var req SubmitAppealRequest
	if !bindJSON(c, &req) {
		return
	}
	appeal, err := h.appealService.Submit(c.Request.Context(), identity, req.RequestedPlan, req.Message)
	if err != nil {
		mapAppealErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, appeal)
}

// ListMyAppeals handles GET /appeals
func (h *AppealHandler) ListMyAppeals(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	appeals, err := h.appealService.ListMine(c.Request.Context(), identity.UID)
	if err != nil {
		mapAppealErrorToStatus(c, h.logger, err)
		return
	}
	if appeals == nil {
		appeals = []*models.Appeal{}
	}
	c.JSON(http.StatusOK, appeals)
}
