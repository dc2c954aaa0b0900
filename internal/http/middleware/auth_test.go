// README: Tests for JWT auth middleware and role gating.
package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"travelbook/internal/auth"
	"travelbook/internal/http/middleware"
)

// stubVerifier is a test double for auth.TokenVerifier.
type stubVerifier struct {
	token *auth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func newTestRouter(verifier auth.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":  middleware.CallerUID(c),
			"id":   int64(middleware.CallerID(c)),
			"role": middleware.CallerRole(c),
		})
	})
	r.GET("/drivers-only", middleware.RequireRole("driver", "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &auth.Token{UID: "1"}})
	if w := get(r, "/test", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &auth.Token{UID: "1"}})
	if w := get(r, "/test", "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_VerifierError(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("bad token")})
	if w := get(r, "/test", "Bearer invalidtoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidToken_UIDAndRolePopulated(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &auth.Token{UID: "123", Username: "moshe", Role: "driver"}})
	w := get(r, "/test", "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"uid":"123"`) || !strings.Contains(body, `"id":123`) {
		t.Errorf("expected uid 123 in body, got %s", body)
	}
	if !strings.Contains(body, `"role":"driver"`) {
		t.Errorf("expected role driver in body, got %s", body)
	}
}

func TestAuth_RealJWT(t *testing.T) {
	issuer := auth.NewJWT("0123456789abcdef-secret", time.Hour)
	token, err := issuer.Issue(7, "dana", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := newTestRouter(issuer)
	w := get(r, "/test", "Bearer "+token)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":7`) {
		t.Fatalf("expected 200 with id 7, got %d %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &auth.Token{UID: "5", Role: "user"}})
	if w := get(r, "/drivers-only", "Bearer t"); w.Code != http.StatusForbidden {
		t.Errorf("user: expected 403, got %d", w.Code)
	}
	r = newTestRouter(&stubVerifier{token: &auth.Token{UID: "6", Role: "driver"}})
	if w := get(r, "/drivers-only", "Bearer t"); w.Code != http.StatusNoContent {
		t.Errorf("driver: expected 204, got %d", w.Code)
	}
}
