package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (bearer token via query parameter, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/topology", s.handleGetTopology)
			r.Put("/topology", s.handlePutTopology)

			r.Route("/config", func(r chi.Router) {
				r.Get("/", s.handleGetConfig)
				r.Put("/", s.handlePutConfig)
				r.Post("/reset", s.handleResetConfig)
				r.Post("/save", s.handleSaveConfig)
			})

			r.Post("/preview", s.handlePreview)

			r.Route("/overrides", func(r chi.Router) {
				r.Put("/entities/{id}", s.handleSetEntityOverride)
				r.Put("/devices/{id}", s.handleSetDeviceOverride)
			})

			r.Route("/filters", func(r chi.Router) {
				r.Put("/entities/{id}", s.handleSetEntityFilter)
				r.Put("/devices/{id}", s.handleSetDeviceFilter)
			})

			r.Post("/migration", s.handleMigration)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
