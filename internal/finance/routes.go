package finance

import "github.com/go-chi/chi/v5"

// MountRoutes attaches finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.ListPayments)
		r.Post("/", h.RecordPayment)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.ListExpenses)
		r.Post("/", h.RecordExpense)
	})

	r.Route("/haulage-payments", func(r chi.Router) {
		r.Get("/", h.ListHaulagePayments)
		r.Post("/", h.RecordHaulagePayment)
	})

	r.Route("/cement-payments", func(r chi.Router) {
		r.Get("/", h.ListCementPayments)
		r.Post("/", h.RecordCementPayment)
	})

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", h.ListWallets)
		r.Get("/{id}", h.WalletStatement)
	})
}
