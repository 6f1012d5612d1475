/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/companies/*   Company management and pattern preview
  /api/timesheets/*  Timesheet creation, resolution, export
  /health            Liveness probe
  /metrics           Prometheus scrape endpoint (opt-in)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/timesheetd/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes the router for a deployment.
type Options struct {
	AllowedOrigins []string
	EnableMetrics  bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.CreateCompany)
			r.Post("/preview", h.PreviewPattern)
			r.Get("/{id}", h.GetCompany)
			r.Get("/{id}/preview", h.PreviewCompany)
			r.Put("/{id}", h.UpdateCompany)
			r.Delete("/{id}", h.DeleteCompany)
			r.Post("/{id}/deactivate", h.DeactivateCompany)
		})

		r.Route("/timesheets", func(r chi.Router) {
			r.Get("/", h.ListTimesheets)
			r.Post("/", h.CreateTimesheet)
			r.Get("/{id}", h.GetTimesheet)
			r.Delete("/{id}", h.DeleteTimesheet)
			r.Get("/{id}/export", h.ExportTimesheet)
		})
	})

	r.Get("/health", h.Health)

	if opts.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
