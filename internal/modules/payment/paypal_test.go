// README: PayPal client tests against a local HTTP server.
package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newPayPalServer(t *testing.T, captureStatus int, captureBody string) (*httptest.Server, *int32) {
	t.Helper()
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/capture") || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(captureStatus)
		_, _ = w.Write([]byte(captureBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

const completedBody = `{
  "id": "5O190127TN364715T",
  "status": "COMPLETED",
  "purchase_units": [{
    "payments": {"captures": [{"id": "3C679366HH908993F", "status": "COMPLETED",
      "amount": {"currency_code": "ILS", "value": "500.00"}}]}
  }]
}`

func TestPayPal_Capture(t *testing.T) {
	srv, tokenCalls := newPayPalServer(t, http.StatusCreated, completedBody)
	pp := NewPayPal(srv.URL, "client", "secret")

	c, err := pp.Capture(context.Background(), "5O190127TN364715T")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if c.Status != StatusCompleted || c.CaptureID != "3C679366HH908993F" {
		t.Fatalf("unexpected capture %+v", c)
	}
	if c.Amount.Amount != 50000 || c.Amount.Currency != "ILS" {
		t.Fatalf("unexpected amount %+v", c.Amount)
	}

	if _, err := pp.Capture(context.Background(), "5O190127TN364715T"); err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if n := atomic.LoadInt32(tokenCalls); n != 1 {
		t.Fatalf("expected cached token, got %d token calls", n)
	}
}

func TestPayPal_CaptureRejected(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusUnprocessableEntity, `{"name":"UNPROCESSABLE_ENTITY"}`)
	pp := NewPayPal(srv.URL, "client", "secret")

	if _, err := pp.Capture(context.Background(), "X"); err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected 422 error, got %v", err)
	}
}

func TestPayPal_BadCredentials(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusCreated, completedBody)
	pp := NewPayPal(srv.URL, "client", "wrong")

	if _, err := pp.Capture(context.Background(), "X"); err == nil {
		t.Fatal("expected token error")
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{"500.00": 50000, "241.5": 24150, "7": 700, "0.01": 1}
	for in, want := range cases {
		got, err := parseAmount(in)
		if err != nil || got != want {
			t.Errorf("parseAmount(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "1.234", ".5", "-3.00"} {
		if _, err := parseAmount(in); err == nil {
			t.Errorf("parseAmount(%q) should fail", in)
		}
	}
}
