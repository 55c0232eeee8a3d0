package rbac

import (
	"net/http"

	"github.com/dealerdesk/dealerdesk/core"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
)

// LoadGrants loads the authenticated user's grant set from the source
// and stores it in the context. One lookup per request; handlers and
// guards below only read the context copy. Anonymous requests pass
// through without grants.
func LoadGrants(source GrantSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			grants, err := source.GrantsForUser(r.Context(), id.UserID)
			if err != nil {
				core.JSONError(w, core.ErrInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithGrants(r.Context(), grants)))
		})
	}
}

// Require guards a route with a capability check. Admin identities
// bypass the grant check; everyone else needs the capability granted.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				core.JSONError(w, core.ErrUnauthorized)
				return
			}
			if id.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if err := Can(r.Context(), c); err != nil {
				core.JSONError(w, core.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
