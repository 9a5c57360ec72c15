package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_Defaults(t *testing.T) {
	h := CORS(CORSAllowAll)(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/widgets/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected request to pass through, got %d", w.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(&CORSConfig{MaxAge: 600})(corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/widgets/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	methods := w.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		if !containsMethod(methods, m) {
			t.Errorf("expected %s in allowed methods, got %q", m, methods)
		}
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("expected max age 600, got %q", got)
	}
}

func TestCORS_SpecificOrigin(t *testing.T) {
	h := CORS(&CORSConfig{AllowOrigins: []string{"https://ok.example"}})(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/widgets/", nil)
	req.Header.Set("Origin", "https://ok.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ok.example" {
		t.Errorf("expected origin echoed back, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/widgets/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for disallowed origin, got %q", got)
	}
}

func TestCORS_CredentialsWithWildcard(t *testing.T) {
	h := CORS(&CORSConfig{AllowCredentials: true})(corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/widgets/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	// Spec forbids "*" together with credentials, so the origin is echoed.
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("expected origin echoed back, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials header, got %q", got)
	}
}

func containsMethod(header, method string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.TrimSpace(part) == method {
			return true
		}
	}
	return false
}
