package dealership

import (
	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
)

// Router mounts the dealership endpoints. All routes require an
// authenticated identity; each resource is guarded by its read or
// write capability, checked against the grants loaded for the request.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireIdentity)

	r.Route("/vehicles", func(r chi.Router) {
		r.With(rbac.Require(rbac.VehiclesRead)).Get("/", h.ListVehicles)
		r.With(rbac.Require(rbac.VehiclesWrite)).Post("/", h.CreateVehicle)

		r.Route("/{vehicleID}", func(r chi.Router) {
			r.With(rbac.Require(rbac.VehiclesRead)).Get("/", h.GetVehicle)
			r.With(rbac.Require(rbac.VehiclesWrite)).Put("/", h.UpdateVehicle)
			r.With(rbac.Require(rbac.VehiclesWrite)).Delete("/", h.DeleteVehicle)

			r.Route("/payments", func(r chi.Router) {
				r.With(rbac.Require(rbac.PaymentsRead)).Get("/", h.ListPayments)
				r.With(rbac.Require(rbac.PaymentsWrite)).Post("/", h.RecordPayment)
				r.With(rbac.Require(rbac.PaymentsWrite)).Delete("/{paymentID}", h.DeletePayment)
			})

			r.Route("/maintenance", func(r chi.Router) {
				r.With(rbac.Require(rbac.MaintenanceRead)).Get("/", h.ListMaintenance)
				r.With(rbac.Require(rbac.MaintenanceWrite)).Post("/", h.RecordMaintenance)
				r.With(rbac.Require(rbac.MaintenanceWrite)).Delete("/{maintenanceID}", h.DeleteMaintenance)
			})
		})
	})

	r.Route("/invoices", func(r chi.Router) {
		r.With(rbac.Require(rbac.InvoicesRead)).Get("/", h.ListInvoices)
		r.With(rbac.Require(rbac.InvoicesWrite)).Post("/", h.CreateInvoice)
		r.With(rbac.Require(rbac.InvoicesRead)).Get("/{invoiceID}", h.GetInvoice)
		r.With(rbac.Require(rbac.InvoicesWrite)).Post("/{invoiceID}/status", h.SetInvoiceStatus)
	})

	return r
}
