package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sageql/sageql/internal/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSecurityHeaders(t *testing.T) {
	h := middleware.SecurityHeaders(okHandler())
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
	}
	for header, value := range want {
		if got := rr.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy missing")
	}
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Strict-Transport-Security missing")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
	})
	h := middleware.RequestID(inner)
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rr.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("no X-Request-ID generated")
	}
	if seen != id {
		t.Errorf("context id %q != header id %q", seen, id)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := middleware.RequestID(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-abc-123")
	rr := serve(h, req)

	if got := rr.Header().Get("X-Request-ID"); got != "trace-abc-123" {
		t.Errorf("X-Request-ID = %q, want caller's id", got)
	}
}

func TestRateLimitEnforced(t *testing.T) {
	const limit = 3
	h := middleware.RateLimit(limit)(okHandler())

	for i := 0; i < limit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		if rr := serve(h, req); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	rr := serve(h, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 past the limit", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing on 429")
	}
	if !strings.Contains(rr.Body.String(), "RateLimitExceeded") {
		t.Errorf("429 body lacks error_type: %s", rr.Body.String())
	}
}

func TestRateLimitKeyedByClientIP(t *testing.T) {
	const limit = 2
	h := middleware.RateLimit(limit)(okHandler())

	for i := 0; i < limit; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1"
		serve(h, req)
	}

	// A different client has its own window.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1"
	if rr := serve(h, req); rr.Code != http.StatusOK {
		t.Errorf("status = %d, other clients must not share the window", rr.Code)
	}

	// Same IP on a new ephemeral port is still the same client.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	if rr := serve(h, req); rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429: port must not split the window", rr.Code)
	}
}

func TestRecoveryReturns500(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "InternalError") {
		t.Errorf("500 body lacks error_type: %s", rr.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.DefaultCORSConfig([]string{"http://localhost:3000"}))(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := serve(h, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("allowed origin not echoed")
	}

	methods := rr.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "OPTIONS"} {
		if !strings.Contains(methods, m) {
			t.Errorf("methods %q missing %s", methods, m)
		}
	}
	// The service has no auth and no mutating verbs; advertising them
	// would misstate the surface.
	for _, m := range []string{"PUT", "DELETE"} {
		if strings.Contains(methods, m) {
			t.Errorf("methods %q must not advertise %s", methods, m)
		}
	}
	headers := rr.Header().Get("Access-Control-Allow-Headers")
	for _, bad := range []string{"X-API-Key", "Authorization"} {
		if strings.Contains(headers, bad) {
			t.Errorf("headers %q must not allowlist %s", headers, bad)
		}
	}
}

func TestCORSUnknownOrigin(t *testing.T) {
	h := middleware.CORS(middleware.DefaultCORSConfig([]string{"http://localhost:3000"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr := serve(h, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not receive CORS headers")
	}
}

func TestCORSWildcard(t *testing.T) {
	h := middleware.CORS(middleware.DefaultCORSConfig([]string{"*"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rr := serve(h, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "http://anywhere.example" {
		t.Error("wildcard config should echo any origin")
	}
}
