package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/models"
)

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 500
)

// AdminHandler backs the privileged console. Routes are guarded by RequireAdmin.
type AdminHandler struct {
	adminService  core.AdminService
	appealService core.AppealService
	logger        *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ads core.AdminService, as core.AppealService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: ads, appealService: as, logger: logger}
}

// Overview handles GET /admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.adminService.Overview(c.Request.Context())
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Schema handles GET /admin/schema
func (h *AdminHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"schema_sql": db.SchemaSQL()})
}

// MigrateSchema handles POST /admin/schema/migrate
func (h *AdminHandler) MigrateSchema(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	result, err := h.adminService.ApplySchema(c.Request.Context(), actor)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetSuspension handles PATCH /admin/users/:id/suspension
func (h *AdminHandler) SetSuspension(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	var req SetSuspensionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Suspended == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "suspended is required"})
		return
	}
	profile, err := h.adminService.SetSuspended(c.Request.Context(), actor, c.Param("id"), *req.Suspended)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ToggleSuspension handles POST /admin/users/:id/suspension/toggle
func (h *AdminHandler) ToggleSuspension(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	profile, err := h.adminService.ToggleSuspension(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// OverridePlan handles PUT /admin/users/:id/plan
func (h *AdminHandler) OverridePlan(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	var req OverridePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.adminService.OverridePlan(c.Request.Context(), actor, c.Param("id"), req.Plan)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ResetPlans handles POST /admin/plans/reset
func (h *AdminHandler) ResetPlans(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	var req ResetPlansRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.adminService.ResetAllPlans(c.Request.Context(), actor, req.Confirmation)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ResetPlansResponse{Affected: n})
}

// ApproveAppeal handles POST /admin/appeals/:id/approve. The body is optional.
func (h *AdminHandler) ApproveAppeal(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	var opts models.ApprovalOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	appeal, err := h.appealService.Approve(c.Request.Context(), actor, c.Param("id"), opts)
	if err != nil {
		h.mapDecisionError(c, err)
		return
	}
	c.JSON(http.StatusOK, appeal)
}

// mapDecisionError keeps the schema script on the admin console for appeal decisions.
func (h *AdminHandler) mapDecisionError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrSchemaMissing) {
		respondSchemaMissing(c)
		return
	}
	mapAppealErrorToStatus(c, h.logger, err)
}

// RejectAppeal handles POST /admin/appeals/:id/reject
func (h *AdminHandler) RejectAppeal(c *gin.Context) {
	actor, ok := identityFrom(c)
	if !ok {
		return
	}
	appeal, err := h.appealService.Reject(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.mapDecisionError(c, err)
		return
	}
	c.JSON(http.StatusOK, appeal)
}

// AuditLogs handles GET /admin/audit-logs?limit=N
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit := defaultAuditLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		if n > maxAuditLogLimit {
			n = maxAuditLogLimit
		}
		limit = n
	}
	logs, err := h.adminService.AuditLogs(c.Request.Context(), limit)
	if err != nil {
		mapAdminErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
