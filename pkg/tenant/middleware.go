package tenant

import (
	"net/http"
)

// Middleware resolves the tenant for every request and stores it in the
// request context. Resolution is total, so handlers downstream can rely
// on MustFromContext; the only failure mode is a missing public tenant,
// which is answered with a 5xx.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := resolver.Resolve(r.Context(), r)
			if err != nil {
				http.Error(w, "service misconfigured", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}
