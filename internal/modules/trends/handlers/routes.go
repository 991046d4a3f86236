package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all labour trend routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/labour", func(r chi.Router) {
		// Full analytics payload
		r.Get("/trends", h.HandleGetTrends)
		// Accepted rangeDays values
		r.Get("/trends/ranges", h.HandleGetRanges)
	})
}
