package orders

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers pending-order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Get("/token/{token}", h.ShowByToken)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}
