package storage

import (
	"context"
	"fmt"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// Directory queries are always schema-qualified against public so
// they behave identically inside and outside tenant scopes.

func (s *Store) GetBySchema(ctx context.Context, schemaID string) (*tenant.Tenant, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT schema_id, name, active, created_at
		FROM public.tenants
		WHERE schema_id = $1`, schemaID)

	var t tenant.Tenant
	if err := row.Scan(&t.SchemaID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by schema: %w", err)
	}
	return &t, nil
}

func (s *Store) GetByHostname(ctx context.Context, hostname string) (*tenant.Tenant, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT t.schema_id, t.name, t.active, t.created_at
		FROM public.tenants t
		JOIN public.domains d ON d.tenant_schema = t.schema_id
		WHERE d.hostname = $1`, hostname)

	var t tenant.Tenant
	if err := row.Scan(&t.SchemaID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by hostname: %w", err)
	}
	return &t, nil
}

func (s *Store) PrimaryDomain(ctx context.Context, schemaID string) (*tenant.Domain, error) {
	row := s.db(ctx).QueryRow(ctx, `
		SELECT hostname, tenant_schema, is_primary
		FROM public.domains
		WHERE tenant_schema = $1 AND is_primary
		LIMIT 1`, schemaID)

	var d tenant.Domain
	if err := row.Scan(&d.Hostname, &d.TenantSchema, &d.IsPrimary); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrDomainNotFound
		}
		return nil, fmt.Errorf("get primary domain: %w", err)
	}
	return &d, nil
}

// ListActive returns active non-public tenants in creation order. The
// universal login scan depends on this ordering being stable.
func (s *Store) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT schema_id, name, active, created_at
		FROM public.tenants
		WHERE active AND schema_id <> $1
		ORDER BY created_at`, tenant.PublicSchema)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.SchemaID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
