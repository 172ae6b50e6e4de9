package inventory

import "github.com/go-chi/chi/v5"

// MountRoutes attaches depot and stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/depots", func(r chi.Router) {
		r.Get("/", h.ListDepots)
		r.Post("/", h.CreateDepot)
		r.Put("/{id}", h.UpdateDepot)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.ListStock)
		r.Post("/adjust", h.Adjust)
	})
}
