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
  /health                Liveness probe
  /api/reports/*         Report queries (JSON, CSV via Accept)
  /api/soap/*            Legacy XML surface (WSDL + envelope endpoint)
  /api/eib/*             Bulk CSV imports and sample downloads

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/benefits-cost", h.BenefitsCost)
			r.Get("/benefits-by-dept", h.BenefitsByDept)
			r.Get("/benefits-trend", h.BenefitsTrend)
		})

		// Legacy XML surface
		r.Route("/soap", func(r chi.Router) {
			r.Get("/raas.wsdl", h.WSDL)
			r.Post("/raas", h.SOAPCall)
		})

		// Bulk import routes
		r.Route("/eib", func(r chi.Router) {
			r.Post("/import/workers", h.ImportWorkers)
			r.Post("/import/enrollments", h.ImportEnrollments)
			r.Post("/import/time-entries", h.ImportTimeEntries)

			r.Get("/samples/workers.csv", h.SampleWorkers)
			r.Get("/samples/enrollments.csv", h.SampleEnrollments)
			r.Get("/samples/time_entries.csv", h.SampleTimeEntries)
		})
	})

	return r
}
