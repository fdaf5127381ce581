package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medicarehq/pharmacy-web/internal/admin"
	"github.com/medicarehq/pharmacy-web/internal/api/router"
	"github.com/medicarehq/pharmacy-web/internal/app/bootstrap"
	appconfig "github.com/medicarehq/pharmacy-web/internal/config"
	"github.com/medicarehq/pharmacy-web/internal/observability/metrics"
	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
	"github.com/medicarehq/pharmacy-web/internal/session"
	"github.com/medicarehq/pharmacy-web/internal/storefront"
	"github.com/medicarehq/pharmacy-web/internal/ui"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting pharmacy web gateway",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	redisClient := bootstrap.BuildRedisClient(context.Background(), cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for sessions and UI state", "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize stores and upstream client
	upstreamMetrics := metrics.NewUpstreamMetrics(nil)
	apiClient := pharmacy.NewClient(cfg.APIBaseURL, logger.Component("pharmacy")).
		WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}).
		WithMetrics(upstreamMetrics)

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	uiStore := ui.NewStore(redisClient, cfg.NotificationTTL)
	gate := session.NewGate(sessions, uiStore, logger.Component("session"))
	carts := storefront.NewCartStore(redisClient, cfg.SessionTTL)

	renderer, err := ui.NewRenderer(logger.Component("ui"))
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	feed := storefront.NewFeed(apiClient, cfg.SalesFeedInterval, logger.Component("salesfeed"))
	storefrontHandler := storefront.NewHandler(apiClient, carts, uiStore, renderer, feed, upstreamMetrics, logger.Component("storefront"))
	adminHandler := admin.NewHandler(apiClient, sessions, gate, uiStore, renderer, upstreamMetrics, cfg.CSRFCookieName, logger.Component("admin"))

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		Storefront:         storefrontHandler,
		Admin:              adminHandler,
		SessionSecret:      cfg.SessionSecret,
		SessionCookieName:  cfg.SessionCookieName,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
