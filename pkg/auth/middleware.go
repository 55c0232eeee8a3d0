package auth

import (
	"net/http"

	"github.com/dealerdesk/dealerdesk/core"
)

// Middleware runs the authenticator chain and attaches the identity
// to the request context. Unauthenticated requests pass through
// anonymously; endpoint guards decide whether that is acceptable.
func Middleware(chain *Chain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := chain.Authenticate(r.Context(), r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			core.JSONError(w, core.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity is not a tenant admin.
// Anonymous requests get 401, non-admin identities get 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			core.JSONError(w, core.ErrUnauthorized)
			return
		}
		if !id.IsAdmin {
			core.JSONError(w, core.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
