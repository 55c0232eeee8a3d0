package rbac

import "slices"

// Capability is a named permission over one resource-action pair. The
// catalog is fixed at compile time; grants reference catalog entries
// and unknown names are rejected at grant time.
type Capability string

const (
	VehiclesRead     Capability = "vehicles.read"
	VehiclesWrite    Capability = "vehicles.write"
	PaymentsRead     Capability = "payments.read"
	PaymentsWrite    Capability = "payments.write"
	MaintenanceRead  Capability = "maintenance.read"
	MaintenanceWrite Capability = "maintenance.write"
	InvoicesRead     Capability = "invoices.read"
	InvoicesWrite    Capability = "invoices.write"
	UsersManage      Capability = "users.manage"
	GrantsManage     Capability = "grants.manage"
)

// catalog is the set of valid capabilities.
var catalog = map[Capability]struct{}{
	VehiclesRead:     {},
	VehiclesWrite:    {},
	PaymentsRead:     {},
	PaymentsWrite:    {},
	MaintenanceRead:  {},
	MaintenanceWrite: {},
	InvoicesRead:     {},
	InvoicesWrite:    {},
	UsersManage:      {},
	GrantsManage:     {},
}

// All returns every capability in the catalog, sorted.
func All() []Capability {
	out := make([]Capability, 0, len(catalog))
	for c := range catalog {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// IsValid reports whether the capability exists in the catalog.
func (c Capability) IsValid() bool {
	_, ok := catalog[c]
	return ok
}

func (c Capability) String() string { return string(c) }
