package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/core"
)

// AuthHandler handles account endpoints. Sign-in happens on the client against Firebase.
type AuthHandler struct {
	accountService core.AccountService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accountService: as, logger: logger}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.accountService.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidEmail), errors.Is(err, core.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, core.ErrEmailTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error("sign-up failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create account"})
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SignOut handles POST /auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}
	if err := h.accountService.SignOut(c.Request.Context(), identity.UID); err != nil {
		h.logger.Error("sign-out failed", zap.String("userID", identity.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}
