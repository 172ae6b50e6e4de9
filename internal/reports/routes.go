package reports

import "github.com/go-chi/chi/v5"

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/trip-profitability", h.TripProfitability)
		r.Get("/monthly-profit-loss", h.MonthlyProfitLoss)
		r.Get("/receivables-aging", h.ReceivablesAging)
		r.Get("/customer-aging", h.CustomerAging)
		r.Get("/fleet-availability", h.FleetAvailability)
		r.Get("/expiring-documents", h.ExpiringDocuments)
		r.Get("/dual-stream-profitability", h.DualStreamProfitability)
	})
}
