package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/vendor/requests/{id}", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/vendor/requests/%d", i), nil))
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/v1/vendor/requests/{id}", "200"))
	if got != 3 {
		t.Errorf("requests on pattern = %v, want 3", got)
	}
}

func TestMiddlewareCollapsesUnmatchedPaths(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/wp-admin/%d.php", i), nil))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("PROPFIND", "/health", nil))

	if n := testutil.CollectAndCount(m.RequestsTotal); n != 2 {
		t.Errorf("requests_total has %d series, want 2", n)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); got != 50 {
		t.Errorf("unmatched 404s = %v, want 50", got)
	}
}
