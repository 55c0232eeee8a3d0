package platform

import (
	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/dealerdesk/pkg/auth"
)

// Router mounts the platform admin endpoints. Every route requires a
// platform admin identity; the caller mounts it under the admin path
// prefix so requests always resolve to the public tenant.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)

	r.Get("/tenants", h.ListTenants)
	r.Post("/tenants", h.CreateTenant)
	r.Post("/tenants/{schemaID}/domains", h.AddDomain)

	return r
}
