// Package router assembles the HTTP surface: public storefront, admin
// dashboard, health and metrics endpoints, and static assets.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medicarehq/pharmacy-web/internal/admin"
	httpmiddleware "github.com/medicarehq/pharmacy-web/internal/http/middleware"
	"github.com/medicarehq/pharmacy-web/internal/storefront"
	"github.com/medicarehq/pharmacy-web/internal/ui"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Storefront         *storefront.Handler
	Admin              *admin.Handler
	SessionSecret      string
	SessionCookieName  string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.SessionCookie(cfg.SessionSecret, cfg.SessionCookieName, cfg.Logger))

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", ui.StaticHandler()))

	if cfg.Admin != nil {
		r.Mount("/admin", cfg.Admin.Routes())
	}
	if cfg.Storefront != nil {
		r.Mount("/", cfg.Storefront.Routes())
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
