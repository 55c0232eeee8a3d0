package accounts

import (
	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
)

// Router mounts the accounts endpoints. Login and debug are open;
// token issuance needs an identity; user and grant management need an
// admin or the matching management capability.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/debug", h.Debug)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireIdentity)
			r.Get("/token", h.Token)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.RequireIdentity)

		r.Group(func(r chi.Router) {
			r.Use(rbac.Require(rbac.UsersManage))
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
		})

		r.Route("/{userID}/capabilities", func(r chi.Router) {
			r.Use(rbac.Require(rbac.GrantsManage))
			r.Get("/", h.UserCapabilities)
			r.Post("/", h.Grant)
			r.Delete("/", h.Revoke)
		})
	})

	r.Get("/capabilities", h.Catalog)

	return r
}
