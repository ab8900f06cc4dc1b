package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/models"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profileService core.ProfileService
	logger         *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(ps core.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: ps, logger: logger}
}

// GetProfile handles GET /profile. When the store is unreachable it still answers 200
// with a default profile marked initialized=false so the client can render.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Sync(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, core.ErrProfileUnavailable) {
			h.logger.Warn("serving default profile", zap.String("userID", identity.UID), zap.Error(err))
			c.JSON(http.StatusOK, ProfileResponse{
				Profile:     models.NewDefaultProfile(identity, models.DateOf(time.Now())),
				Initialized: false,
			})
			return
		}
		h.logger.Error("profile read failed", zap.String("userID", identity.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve profile"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile, Initialized: true})
}

// SyncProfile handles POST /profile/sync, called by the client after sign-in.
func (h *ProfileHandler) SyncProfile(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	profile, err := h.profileService.Sync(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, core.ErrProfileUnavailable) {
			h.logger.Warn("profile sync unavailable", zap.String("userID", identity.UID), zap.Error(err))
			respondStoreUnavailable(c, err)
			return
		}
		h.logger.Error("profile sync failed", zap.String("userID", identity.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to synchronize profile"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile, Initialized: true})
}
