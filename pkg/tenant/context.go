package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant adds a tenant to the context. The association is carried by
// the request context only, never by process-global state, so concurrent
// requests against different tenants cannot leak into each other.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// SchemaFromContext retrieves just the tenant schema id from the context.
func SchemaFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return t.SchemaID, true
}

// MustFromContext retrieves the tenant from the context and panics if
// absent. Only for handlers mounted behind the resolver middleware,
// where a missing tenant is a programming error.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a logger ContextExtractor that adds the
// current tenant schema to every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if schema, ok := SchemaFromContext(ctx); ok {
			return slog.String("tenant_schema", schema), true
		}
		return slog.Attr{}, false
	}
}
