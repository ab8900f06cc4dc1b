package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
)

// ErrorResponse mirrors api.ErrorResponse; it is duplicated here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Context keys set by VerifyToken.
const (
	ContextUserID   = "userID"
	ContextIdentity = "identity"
)

// TokenVerifier checks an ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier   TokenVerifier
	adminClaim string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. adminClaim names the custom claim
// that grants admin access; it defaults to "role".
func NewAuthMiddleware(verifier TokenVerifier, adminClaim string, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		logger.Fatal("Firebase Auth client is not initialized for AuthMiddleware")
	}
	if adminClaim == "" {
		adminClaim = "role"
	}
	return &AuthMiddleware{verifier: verifier, adminClaim: adminClaim, logger: logger.Named("auth")}
}

// isAdmin accepts both `"<claim>": "admin"` and `"<claim>": true`.
func isAdmin(claims map[string]interface{}, claim string) bool {
	switch v := claims[claim].(type) {
	case string:
		return strings.EqualFold(v, "admin")
	case bool:
		return v
	}
	return false
}

// VerifyToken verifies the bearer ID token and stores the caller's Identity in the context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Info("ID token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		identity := models.Identity{UID: token.UID, IsAdmin: isAdmin(token.Claims, m.adminClaim)}
		if email, ok := token.Claims["email"].(string); ok {
			identity.Email = email
		}
		if name, ok := token.Claims["name"].(string); ok {
			identity.DisplayName = name
		}

		c.Set(ContextUserID, identity.UID)
		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

// RequireAdmin rejects callers whose identity lacks the admin claim. It must run after VerifyToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
			return
		}
		if !identity.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by VerifyToken.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(ContextIdentity)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok && identity.UID != ""
}
