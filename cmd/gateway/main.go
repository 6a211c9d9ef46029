// Package main is the entrypoint for the public API gateway.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/listhub/listhub/internal/config"
	"github.com/listhub/listhub/internal/handler"
	"github.com/listhub/listhub/internal/logging"
	"github.com/listhub/listhub/internal/metrics"
	"github.com/listhub/listhub/internal/middleware"
	"github.com/listhub/listhub/internal/router"
	"github.com/listhub/listhub/internal/server"
	"github.com/listhub/listhub/internal/service"
	"github.com/listhub/listhub/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadGateway()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// Metrics
	var (
		recorder       metrics.Recorder = metrics.NewNoop()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(reg)
		metricsHandler = metrics.Handler(reg)
	}

	// Backends
	client := upstream.NewClient(upstream.Options{
		UserServiceURL:    cfg.UserServiceURL,
		ListingServiceURL: cfg.ListingServiceURL,
		HTTPClient:        upstream.NewHTTPClient(cfg.UpstreamTimeout),
		Logger:            logger,
		Metrics:           recorder,
	})
	enricher := service.NewListingEnricher(client, logger, recorder)

	// Handlers
	public := handler.NewPublicHandler(client, enricher, logger)
	health := handler.NewHealthHandler().
		AddCheck("user_service", handler.HealthCheckFunc(client.PingUsers)).
		AddCheck("listing_service", handler.HealthCheckFunc(client.PingListings))

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := router.Gateway(router.Config{
		Logger:        logger,
		IsDevelopment: cfg.IsDevelopment(),
		MaxBodySize:   cfg.MaxRequestBodySize,
		Metrics:       metricsHandler,
	}, cors, public, health)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting gateway",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"user_service_url", logging.RedactURL(cfg.UserServiceURL),
		"listing_service_url", logging.RedactURL(cfg.ListingServiceURL),
		"metrics_enabled", cfg.MetricsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
