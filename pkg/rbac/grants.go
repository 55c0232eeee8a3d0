package rbac

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// GrantSet is the set of capabilities granted to one user within one
// tenant. Loaded once per request and carried in the context.
type GrantSet struct {
	capabilities map[Capability]struct{}
}

// NewGrantSet builds a grant set from capability names. Unknown names
// are rejected; a grant row pointing outside the catalog is data
// corruption, not a soft miss.
func NewGrantSet(names ...string) (GrantSet, error) {
	caps := make(map[Capability]struct{}, len(names))
	for _, name := range names {
		c := Capability(name)
		if !c.IsValid() {
			return GrantSet{}, ErrUnknownCapability
		}
		caps[c] = struct{}{}
	}
	return GrantSet{capabilities: caps}, nil
}

// Has reports whether the capability is granted.
func (g GrantSet) Has(c Capability) bool {
	_, ok := g.capabilities[c]
	return ok
}

// HasAny reports whether any of the capabilities is granted.
func (g GrantSet) HasAny(cs ...Capability) bool {
	for _, c := range cs {
		if g.Has(c) {
			return true
		}
	}
	return false
}

// HasAll reports whether every capability is granted.
func (g GrantSet) HasAll(cs ...Capability) bool {
	for _, c := range cs {
		if !g.Has(c) {
			return false
		}
	}
	return true
}

// List returns the granted capabilities, sorted.
func (g GrantSet) List() []Capability {
	out := make([]Capability, 0, len(g.capabilities))
	for c := range g.capabilities {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of granted capabilities.
func (g GrantSet) Len() int { return len(g.capabilities) }

// GrantSource loads the grant set for a user. The Postgres source
// reads from the active tenant's partition via the scope in ctx.
type GrantSource interface {
	GrantsForUser(ctx context.Context, userID uuid.UUID) (GrantSet, error)
}
