package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/middleware"
	"thumblytic-backend-go/internal/models"
)

const (
	codeSchemaMissing    = "schema_missing"
	codeStoreUnavailable = "store_unavailable"
	overviewPath         = "/api/v1/admin/overview"
)

// respondSchemaMissing sends the init script so an operator can bootstrap the database.
// Only admin routes use it.
func respondSchemaMissing(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, SchemaMissingResponse{
		Error:     "Database tables are missing. Run the schema script, then retry.",
		Code:      codeSchemaMissing,
		SchemaSQL: db.SchemaSQL(),
		Retry:     overviewPath,
	})
}

// respondStoreUnavailable is the user-facing 503 for an uninitialized or unreachable store.
func respondStoreUnavailable(c *gin.Context, err error) {
	code := codeStoreUnavailable
	if errors.Is(err, core.ErrSchemaMissing) {
		code = codeSchemaMissing
	}
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: "The service is temporarily unavailable. Please try again later.",
		Code:  code,
	})
}

// identityFrom returns the authenticated caller or writes a 401.
func identityFrom(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
		return models.Identity{}, false
	}
	return identity, true
}

// bindJSON decodes the body or writes a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}

// mapGenerationErrorToStatus handles errors from the generation and suggestion services.
func mapGenerationErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrCreditsExhausted):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: err.Error(), Redirect: "pricing"})
	case errors.Is(err, core.ErrProfileSuspended):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrEmptyTopic),
		errors.Is(err, core.ErrInvalidConfig),
		errors.Is(err, core.ErrNoSourceImages),
		errors.Is(err, core.ErrTooManySourceImages),
		errors.Is(err, core.ErrInvalidSourceImage),
		errors.Is(err, core.ErrEmptyInstructions):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrSchemaMissing), errors.Is(err, core.ErrProfileUnavailable):
		logger.Warn("profile store unavailable", zap.Error(err))
		respondStoreUnavailable(c, err)
	case core.IsProviderError(err):
		logger.Warn("provider failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("generation request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// mapAppealErrorToStatus handles errors from the appeal service.
func mapAppealErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyAppealMessage),
		errors.Is(err, core.ErrAppealMessageTooLong),
		errors.Is(err, core.ErrInvalidPlan),
		errors.Is(err, core.ErrInvalidCredits):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrAppealNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrAppealNotFound.Error()})
	case errors.Is(err, core.ErrAppealNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrSchemaMissing):
		respondStoreUnavailable(c, err)
	default:
		logger.Error("appeal request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// mapAdminErrorToStatus handles errors from the admin service. Unexpected failures get a generic body.
func mapAdminErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrSchemaMissing):
		respondSchemaMissing(c)
	case errors.Is(err, core.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrProfileNotFound.Error()})
	case errors.Is(err, core.ErrInvalidPlan), errors.Is(err, core.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrMigrationUnavailable):
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("admin operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Operation failed"})
	}
}
