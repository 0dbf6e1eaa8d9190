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
  /api/summary, /api/elp, /api/alerts   Portfolio reports
  /api/renewals/*                       Renewal radar
  /api/departments/*                    Cost allocation
  /api/products/*                       Product drilldown
  /api/reclaim, /api/lowusage           Optimization tables
  /api/scenario/*                       Seat-reduction what-if
  /api/export/*                         CSV downloads
  /api/settings                         Session settings
  /api/admin/*                          Dataset load and status

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Portfolio reports
		r.Get("/summary", h.GetSummary)
		r.Get("/elp", h.GetELP)
		r.Get("/alerts", h.GetAlerts)

		// Renewal radar
		r.Route("/renewals", func(r chi.Router) {
			r.Get("/", h.GetRenewals)
			r.Get("/summary", h.GetRenewalSummary)
			r.Get("/alert", h.GetRenewalAlert)
		})

		// Cost allocation
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.GetDepartments)
			r.Get("/{name}", h.GetDepartment)
		})

		// Optimization
		r.Get("/products/{software}", h.GetProduct)
		r.Get("/reclaim", h.GetReclaim)
		r.Get("/lowusage", h.GetLowUsage)

		// What-if
		r.Route("/scenario", func(r chi.Router) {
			r.Post("/", h.RunScenario)
			r.Post("/export", h.ExportScenario)
		})

		// CSV downloads
		r.Route("/export", func(r chi.Router) {
			r.Get("/elp.csv", h.ExportELP)
			r.Get("/renewals.csv", h.ExportRenewals)
			r.Get("/servicenow.csv", h.ExportServiceNow)
			r.Get("/departments.csv", h.ExportDepartments)
			r.Get("/reclaim.csv", h.ExportReclaim)
			r.Get("/lowusage.csv", h.ExportLowUsage)
		})

		// Settings
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Get("/status", h.GetStatus)
			r.Post("/reload", h.ReloadData)
			r.Post("/demo", h.LoadDemo)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
