package orders

import "github.com/go-chi/chi/v5"

// MountRoutes attaches order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/pipeline", h.Pipeline)
	r.Get("/shortages", h.Shortages)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/confirm-payment", h.ConfirmPayment)
		r.Post("/dispatch", h.Dispatch)
		r.Post("/reassign", h.Reassign)
		r.Post("/reconcile", h.Reconcile)
		r.Post("/cancel", h.Cancel)
	})
}
