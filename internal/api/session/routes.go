package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/start", h.StartSession)
		r.Post("/chat", h.Chat)
		r.Post("/end", h.EndSession)
		r.Get("/sessions/{thread_id}", h.GetSession)
		r.Get("/export/{thread_id}", h.ExportSession)
	})
}
