package billing

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.List)
	r.Get("/invoices/{id}", h.Show)
	r.Post("/invoices", h.Generate)
	r.Get("/orders/{orderID}/preview", h.Preview)
	r.Get("/orders/{orderID}/invoice", h.ShowByOrder)
}
