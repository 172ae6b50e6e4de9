package fleet

import "github.com/go-chi/chi/v5"

// MountRoutes attaches fleet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/trucks", func(r chi.Router) {
		r.Get("/", h.ListTrucks)
		r.Post("/", h.CreateTruck)
		r.Put("/{id}", h.UpdateTruck)
	})

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", h.ListDrivers)
		r.Post("/", h.CreateDriver)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDriver)
			r.Put("/", h.UpdateDriver)
			r.Get("/ledger", h.Ledger)
			r.Post("/ledger", h.PostLedger)
		})
	})
}
