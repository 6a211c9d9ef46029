// Package router assembles the chi routers for the gateway and the backend services.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/listhub/listhub/internal/handler"
	"github.com/listhub/listhub/internal/middleware"
)

// Config holds the settings every router shares.
type Config struct {
	Logger        *slog.Logger
	IsDevelopment bool
	MaxBodySize   int64
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// base builds a router with the global middleware stack and the health routes.
func base(cfg Config, health *handler.HealthHandler, extra ...func(http.Handler) http.Handler) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	for _, mw := range extra {
		r.Use(mw)
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Health endpoints
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	h := handler.New()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

// Gateway returns the public API router.
func Gateway(cfg Config, cors middleware.CORSConfig, public *handler.PublicHandler, health *handler.HealthHandler) *chi.Mux {
	r := base(cfg, health, middleware.CORS(cors))
	h := handler.New()

	r.Route("/public-api", func(r chi.Router) {
		r.Get("/ping", h.Ping)

		r.Get("/users", public.ListUsers)
		r.Post("/users", public.CreateUser)

		r.Get("/listings", public.ListListings)
		r.Post("/listings", public.CreateListing)
	})

	return r
}

// UserService returns the user service router.
func UserService(cfg Config, users *handler.UserHandler, health *handler.HealthHandler) *chi.Mux {
	r := base(cfg, health)
	h := handler.New()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Get("/ping", h.Ping)
		r.Get("/{id}", users.Get)
	})

	return r
}

// ListingService returns the listing service router.
func ListingService(cfg Config, listings *handler.ListingHandler, health *handler.HealthHandler) *chi.Mux {
	r := base(cfg, health)
	h := handler.New()

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", listings.List)
		r.Post("/", listings.Create)
		r.Get("/ping", h.Ping)
	})

	return r
}
