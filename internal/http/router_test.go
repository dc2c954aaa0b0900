// README: Router wiring tests.
package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"travelbook/internal/auth"
	"travelbook/internal/logger"
)

type denyVerifier struct{}

func (denyVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return nil, errors.New("denied")
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{Verifier: denyVerifier{}, Log: logger.Nop(), CORSOrigins: []string{"http://localhost:3000"}})
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	if w.Code != nethttp.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if w.Code != nethttp.StatusOK || !strings.Contains(w.Body.String(), "travelbook_http_requests_total") {
		t.Fatalf("metrics not exposed: %d", w.Code)
	}
}

func TestRouter_SecuredRoutesRequireToken(t *testing.T) {
	r := newTestRouter()
	for _, rt := range []struct{ method, path string }{
		{nethttp.MethodPost, "/api/orders/surprise"},
		{nethttp.MethodGet, "/api/orders/1"},
		{nethttp.MethodPatch, "/api/orders/1/status"},
		{nethttp.MethodGet, "/api/driver/deliveries"},
	} {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		req.Header.Set("Authorization", "Bearer x")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != nethttp.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(nethttp.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", nethttp.MethodPost)
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
}
