package address

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestSearchStreets(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Write([]byte(`[
			{"display_name":"הרצל, חיפה","address":{"road":"הרצל"}},
			{"display_name":"הרצל, חיפה, ישראל","address":{"road":"הרצל"}},
			{"display_name":"שדרות הרצל, חיפה","address":{}}
		]`))
	}))
	defer srv.Close()

	svc := NewService(NewHTTPGeocoder(srv.URL, time.Second), zap.NewNop())
	got := svc.SearchStreets(context.Background(), "חיפה", "הרצ")

	if len(got) != 2 || got[0] != "הרצל" || got[1] != "שדרות הרצל" {
		t.Fatalf("SearchStreets() = %v", got)
	}
	if !strings.Contains(gotQuery, "format=json") || !strings.Contains(gotQuery, "city=") {
		t.Errorf("unexpected query %s", gotQuery)
	}
}

func TestSearchStreetsShortQuerySkipsUpstream(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc := NewService(NewHTTPGeocoder(srv.URL, time.Second), zap.NewNop())
	for _, tc := range []struct{ city, query string }{{"חיפה", "ה"}, {"", "הרצל"}, {"חיפה", "  "}} {
		if got := svc.SearchStreets(context.Background(), tc.city, tc.query); len(got) != 0 {
			t.Errorf("SearchStreets(%q, %q) = %v", tc.city, tc.query, got)
		}
	}
	if called {
		t.Error("upstream should not be called for short queries")
	}
}

func TestStreetsHandlerDegradesOnUpstreamFailure(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	unreachable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable.Close()

	for name, url := range map[string]string{"5xx": failing.URL, "unreachable": unreachable.URL} {
		t.Run(name, func(t *testing.T) {
			router := chi.NewRouter()
			NewHandler(NewService(NewHTTPGeocoder(url, time.Second), zap.NewNop())).RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodPost, "/streets", strings.NewReader(`{"city":"חיפה","query":"הרצל"}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			var body struct {
				Streets []string `json:"streets"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Streets == nil || len(body.Streets) != 0 {
				t.Errorf("expected empty non-null streets, got %s", rr.Body.String())
			}
		})
	}
}
