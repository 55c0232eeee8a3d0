package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrDomainNotFound is returned when a tenant has no domain records.
	ErrDomainNotFound = errors.New("tenant domain not found")

	// ErrInactiveTenant is returned when trying to use a deactivated tenant.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrPublicTenantMissing indicates the public tenant is absent from
	// the directory. This is a configuration fault: it must never occur
	// at request time and is surfaced as a 5xx.
	ErrPublicTenantMissing = errors.New("public tenant not found in directory")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
