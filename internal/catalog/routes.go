package catalog

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fabrics", h.ListFabrics)
	r.Get("/fabrics/{id}", h.ShowFabric)
	r.Post("/fabrics", h.CreateFabric)
	r.Put("/fabrics/{id}", h.UpdateFabric)
	r.Delete("/fabrics/{id}", h.DeleteFabric)

	r.Get("/item-types", h.ListItemTypes)
	r.Get("/item-types/{id}", h.ShowItemType)
	r.Post("/item-types", h.CreateItemType)
	r.Put("/item-types/{id}", h.UpdateItemType)
	r.Delete("/item-types/{id}", h.DeleteItemType)

	r.Get("/styles", h.ListStyles)
	r.Post("/styles", h.CreateStyle)
	r.Put("/styles/{id}", h.UpdateStyle)
	r.Delete("/styles/{id}", h.DeleteStyle)

	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
}
