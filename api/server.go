/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the game client

ROUTES:
  /api/meta       Profile enumerations
  /api/start      New session
  /api/offers     Current offers
  /api/commit     Settle a day
  /api/state      Session summary
  /api/simulate   Headless policy run
  /api/sessions   Archived sessions, their events, deletion
  /healthz        Liveness

SECURITY NOTE:
  No authentication middleware. Session ids are unguessable UUIDs and are
  the only access control.

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", h.Meta)
		r.Post("/start", h.Start)
		r.Get("/offers", h.Offers)
		r.Post("/commit", h.Commit)
		r.Get("/state", h.State)
		r.Post("/simulate", h.Simulate)

		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}/events", h.SessionEvents)
		r.Delete("/sessions/{id}", h.DeleteSession)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.Sessions.Len()})
	})

	return r
}
