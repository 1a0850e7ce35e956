/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the operations dashboard
  5. Auth:       Bearer token check on /api routes only

ROUTE GROUPS:
  /api/rebuild-plan     Plan rebuild
  /api/plan/*           Plan reads and manual items
  /api/technicians/*    Roster management
  /api/work-items/*     Backlog management
  /api/admin/*          Admin operations
  /metrics              Prometheus scrape endpoint (unauthenticated)
  /healthz              Liveness probe (unauthenticated)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Bearer-token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/dispatch-engine/metrics"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, verifier TokenVerifier) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(verifier))

		r.Post("/rebuild-plan", h.RebuildPlan)

		r.Route("/plan", func(r chi.Router) {
			r.Get("/", h.GetPlan)
			r.Post("/items", h.CreateManualPlanItem)
			r.Delete("/items/{id}", h.DeletePlanItem)
		})

		r.Route("/technicians", func(r chi.Router) {
			r.Get("/", h.ListTechnicians)
			r.Post("/", h.CreateTechnician)
		})

		r.Route("/work-items", func(r chi.Router) {
			r.Get("/", h.ListWorkItems)
			r.Post("/", h.CreateWorkItem)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/clear-lock", h.ClearLock)
		})
	})

	// Operational endpoints stay outside the auth gate so probes and the
	// scraper need no credentials.
	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return r
}
