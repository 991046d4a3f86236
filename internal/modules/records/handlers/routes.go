package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all record store routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/labour/records", func(r chi.Router) {
		r.Get("/", h.HandleExport)
		r.Post("/import", h.HandleImport)
		r.Delete("/time/{id}", h.HandleDeleteTimeRecord)
	})
}
