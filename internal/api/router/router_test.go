package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medicarehq/pharmacy-web/internal/admin"
	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
	"github.com/medicarehq/pharmacy-web/internal/session"
	"github.com/medicarehq/pharmacy-web/internal/storefront"
	"github.com/medicarehq/pharmacy-web/internal/ui"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.New("error")

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	renderer, err := ui.NewRenderer(logger)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	api := pharmacy.NewClient("http://localhost:1", logger)
	sessions := session.NewStore(client, 0)
	uiStore := ui.NewStore(client, 3*time.Second)
	gate := session.NewGate(sessions, uiStore, logger)
	carts := storefront.NewCartStore(client, time.Hour)
	feed := storefront.NewFeed(api, time.Second, logger)

	cfg := &Config{
		Logger:            logger,
		Storefront:        storefront.NewHandler(api, carts, uiStore, renderer, feed, nil, logger),
		Admin:             admin.NewHandler(api, sessions, gate, uiStore, renderer, nil, "csrftoken", logger),
		SessionSecret:     "test-secret",
		SessionCookieName: "sid",
		MetricsHandler:    promhttp.Handler(),
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterSetsSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if !found {
		t.Fatal("expected a session cookie on first visit")
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterServesStylesheet(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct == "" {
		t.Error("expected a content type on static assets")
	}
}

func TestRouterMountsAdminDashboard(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
