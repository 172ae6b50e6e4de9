package documents

import "github.com/go-chi/chi/v5"

// MountRoutes attaches document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/expiring", h.ListExpiring)
		r.Put("/{id}/renew", h.Renew)
	})
}
