/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

AUTH BOUNDARY:
  Public:  login, active-roster listing, hours submission.
  Admin:   everything that reads payroll or mutates state. The auth
  middleware wraps these groups so unauthorized requests are rejected
  before any handler (and so before any mutation) runs.

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
func NewRouter(h *Handler, allowOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Login)
		r.Get("/tas", h.ListTAs)
		r.Post("/hours", h.LogHours)

		// Admin routes. Registered per-method rather than as mounted
		// subrouters because /hours and /tas each mix a public method
		// with gated ones on the same pattern.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Get("/hours", h.ListHours)
			r.Put("/hours/{id}", h.UpdateHours)
			r.Delete("/hours/{id}", h.DeleteHours)

			r.Get("/payroll", h.GetPayroll)
			r.Post("/payroll/paid", h.MarkPaid)
			r.Post("/payroll/unpaid", h.MarkUnpaid)

			r.Post("/tas", h.CreateTA)
			r.Delete("/tas/{id}", h.DeleteTA)
		})
	})

	return r
}
