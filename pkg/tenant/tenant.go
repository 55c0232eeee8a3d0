package tenant

import (
	"context"
	"time"
)

// PublicSchema is the schema id of the distinguished public tenant used
// for administrative and pre-login traffic.
const PublicSchema = "public"

// Tenant identifies one isolated data partition (a dealership).
type Tenant struct {
	SchemaID  string    `json:"schema_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPublic reports whether t is the distinguished public tenant.
func (t *Tenant) IsPublic() bool {
	return t != nil && t.SchemaID == PublicSchema
}

// Domain maps a network-visible hostname to exactly one tenant.
type Domain struct {
	Hostname     string `json:"hostname"`
	TenantSchema string `json:"tenant_schema"`
	IsPrimary    bool   `json:"is_primary"`
}

// Directory is the shared, cross-tenant lookup surface over Tenant and
// Domain records. It lives outside any per-tenant partition, which is
// what makes resolution possible before a tenant is known.
type Directory interface {
	// GetBySchema retrieves a tenant by its schema id.
	// Returns ErrTenantNotFound if no tenant matches.
	GetBySchema(ctx context.Context, schemaID string) (*Tenant, error)

	// GetByHostname retrieves the tenant owning the given hostname.
	// Returns ErrTenantNotFound if no domain matches.
	GetByHostname(ctx context.Context, hostname string) (*Tenant, error)

	// PrimaryDomain returns the primary domain of a tenant.
	// Returns ErrDomainNotFound if the tenant has no domain records.
	PrimaryDomain(ctx context.Context, schemaID string) (*Domain, error)

	// ListActive returns all active non-public tenants ordered by
	// creation time. Universal login iterates this list.
	ListActive(ctx context.Context) ([]*Tenant, error)
}

// Scope binds all credential-store and business-data access within fn
// to the given tenant's partition. Implementations must release the
// binding on every exit path and must keep the association
// request-local so concurrent requests never observe each other's
// tenant.
type Scope interface {
	RunInTenant(ctx context.Context, t *Tenant, fn func(ctx context.Context) error) error
}
