package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// schemaIDPattern constrains schema identifiers to what provisioning
// accepts. Checked again here so a corrupted directory row can never
// smuggle SQL into SET search_path.
var schemaIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// RunInTenant implements tenant.Scope. The callback runs inside a
// transaction whose search_path is pinned to the tenant schema, with
// public trailing for the shared directory tables. The scope lives in
// the context only; concurrent requests on other tenants are
// unaffected.
func (s *Store) RunInTenant(ctx context.Context, t *tenant.Tenant, fn func(ctx context.Context) error) error {
	if t == nil {
		return tenant.ErrNoTenantInContext
	}
	if !schemaIDPattern.MatchString(t.SchemaID) {
		return fmt.Errorf("%w: invalid schema id %q", tenant.ErrTenantNotFound, t.SchemaID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tenant transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	searchPath := pgx.Identifier{t.SchemaID}.Sanitize()
	if !t.IsPublic() {
		searchPath += ", public"
	}
	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+searchPath); err != nil {
		return fmt.Errorf("set search_path for %s: %w", t.SchemaID, err)
	}

	scoped := tenant.WithTenant(ctx, t)
	scoped = context.WithValue(scoped, txCtxKey{}, tx)

	if err := fn(scoped); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
