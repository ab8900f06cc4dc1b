package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := s[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("token expired")
}

var tokens = stubVerifier{
	"user-token":  {UID: "u1", Claims: map[string]interface{}{"email": "u1@example.com", "name": "Sana"}},
	"admin-token": {UID: "a1", Claims: map[string]interface{}{"role": "admin"}},
	"flag-token":  {UID: "a2", Claims: map[string]interface{}{"admin": true}},
}

func newAuthRouter(claim string, extra ...gin.HandlerFunc) *gin.Engine {
	m := NewAuthMiddleware(tokens, claim, zap.NewNop())
	router := gin.New()
	router.Use(m.VerifyToken())
	router.Use(extra...)
	router.GET("/protected", func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"uid": id.UID, "email": id.Email, "name": id.DisplayName, "admin": id.IsAdmin})
	})
	return router
}

func doGet(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestVerifyTokenRejectsMissingAndMalformed(t *testing.T) {
	router := newAuthRouter("")
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer "} {
		if resp := doGet(router, header); resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestVerifyTokenRejectsInvalidToken(t *testing.T) {
	resp := doGet(newAuthRouter(""), "Bearer stale")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestVerifyTokenSetsIdentity(t *testing.T) {
	resp := doGet(newAuthRouter(""), "bearer user-token")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	want := `{"admin":false,"email":"u1@example.com","name":"Sana","uid":"u1"}`
	if resp.Body.String() != want {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	router := newAuthRouter("role", RequireAdmin())

	if resp := doGet(router, "Bearer user-token"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.Code)
	}
	if resp := doGet(router, "Bearer admin-token"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}

	flagRouter := newAuthRouter("admin", RequireAdmin())
	if resp := doGet(flagRouter, "Bearer flag-token"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for boolean admin claim, got %d", resp.Code)
	}
	if resp := doGet(flagRouter, "Bearer admin-token"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when claim name differs, got %d", resp.Code)
	}
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	router := gin.New()
	router.Use(RequireAdmin())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	if resp := doGet(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, zap.NewNop())
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(ContextUserID, uid)
		}
	})
	router.Use(rl.Handler())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(uid string) int {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-Test-User", uid)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code == http.StatusTooManyRequests && resp.Header().Get("Retry-After") == "" {
			t.Fatalf("429 without Retry-After")
		}
		return resp.Code
	}

	if call("u1") != http.StatusOK || call("u1") != http.StatusOK {
		t.Fatalf("burst requests should pass")
	}
	if code := call("u1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := call("u2"); code != http.StatusOK {
		t.Fatalf("other users are not throttled, got %d", code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.NewNop()))
	router.GET("/protected", func(c *gin.Context) { panic("boom") })

	resp := doGet(router, "")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(&config.Config{ClientURL: "https://app.example.com, https://preview.example.com/"}))
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Origin", "https://preview.example.com")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://preview.example.com" {
		t.Fatalf("expected preview origin to be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", resp.Code)
	}
}
