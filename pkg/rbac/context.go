package rbac

import "context"

type grantsCtxKey struct{}

// WithGrants stores the user's grant set in the context.
func WithGrants(ctx context.Context, grants GrantSet) context.Context {
	return context.WithValue(ctx, grantsCtxKey{}, grants)
}

// GrantsFromContext retrieves the grant set from the context.
func GrantsFromContext(ctx context.Context) (GrantSet, bool) {
	grants, ok := ctx.Value(grantsCtxKey{}).(GrantSet)
	return grants, ok
}

// Can checks the context's grant set for one capability.
func Can(ctx context.Context, c Capability) error {
	grants, ok := GrantsFromContext(ctx)
	if !ok {
		return ErrGrantsNotInContext
	}
	if !grants.Has(c) {
		return ErrInsufficientCapabilities
	}
	return nil
}
