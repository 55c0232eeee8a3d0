package rbac

import "errors"

var (
	// ErrUnknownCapability is returned when a grant names a capability
	// outside the catalog.
	ErrUnknownCapability = errors.New("rbac.unknown_capability")

	// ErrInsufficientCapabilities is returned when the grant set lacks
	// a required capability.
	ErrInsufficientCapabilities = errors.New("rbac.insufficient_capabilities")

	// ErrGrantsNotInContext is returned when no grant set is found in
	// the context.
	ErrGrantsNotInContext = errors.New("rbac.grants_not_in_context")
)
