package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// Provisioner creates tenant partitions: the directory rows, the
// schema, and the tenant tables inside it.
type Provisioner struct {
	store *Store
	cfg   pg.Config
	log   *slog.Logger
}

// NewProvisioner creates a provisioner over the store's pool.
func NewProvisioner(store *Store, cfg pg.Config, log *slog.Logger) *Provisioner {
	return &Provisioner{store: store, cfg: cfg, log: log}
}

// CreateTenant provisions a new dealership: directory row, primary
// domain, schema, and tenant tables. The directory row is written
// first so a half-provisioned tenant is visible and retryable rather
// than silently absent.
func (p *Provisioner) CreateTenant(ctx context.Context, schemaID, name, hostname string) (*tenant.Tenant, error) {
	if !schemaIDPattern.MatchString(schemaID) {
		return nil, fmt.Errorf("%w: %q must match %s", ErrInvalidSchemaID, schemaID, schemaIDPattern)
	}
	if schemaID == tenant.PublicSchema {
		return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidSchemaID, tenant.PublicSchema)
	}

	row := p.store.pool.QueryRow(ctx, `
		INSERT INTO public.tenants (schema_id, name, active, created_at)
		VALUES ($1, $2, true, now())
		RETURNING schema_id, name, active, created_at`, schemaID, name)

	var t tenant.Tenant
	if err := row.Scan(&t.SchemaID, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaExists, schemaID)
		}
		return nil, fmt.Errorf("insert tenant row: %w", err)
	}

	if hostname != "" {
		if err := p.AddDomain(ctx, hostname, schemaID, true); err != nil {
			return nil, err
		}
	}

	if _, err := p.store.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schemaID}.Sanitize()); err != nil {
		return nil, fmt.Errorf("create schema %s: %w", schemaID, err)
	}

	if err := pg.MigrateSchema(ctx, p.cfg, schemaID, p.cfg.TenantMigrationsPath, p.log); err != nil {
		return nil, fmt.Errorf("migrate tenant schema %s: %w", schemaID, err)
	}

	p.log.InfoContext(ctx, "tenant provisioned",
		slog.String("tenant_schema", schemaID),
		slog.String("hostname", hostname),
	)
	return &t, nil
}

// EnsurePublicTenant creates the public tenant directory row if absent
// and applies the tenant tables to the public schema. The public
// tenant hosts platform admin users, so it carries the same user and
// session tables as every dealership partition.
func (p *Provisioner) EnsurePublicTenant(ctx context.Context, name string) error {
	_, err := p.store.pool.Exec(ctx, `
		INSERT INTO public.tenants (schema_id, name, active, created_at)
		VALUES ($1, $2, true, now())
		ON CONFLICT (schema_id) DO NOTHING`, tenant.PublicSchema, name)
	if err != nil {
		return fmt.Errorf("ensure public tenant row: %w", err)
	}

	if err := pg.MigrateSchema(ctx, p.cfg, tenant.PublicSchema, p.cfg.TenantMigrationsPath, p.log); err != nil {
		return fmt.Errorf("migrate public schema: %w", err)
	}
	return nil
}

// AddDomain maps a hostname to a tenant. At most one primary domain
// per tenant; adding a new primary demotes the previous one.
func (p *Provisioner) AddDomain(ctx context.Context, hostname, schemaID string, isPrimary bool) error {
	tx, err := p.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if isPrimary {
		if _, err := tx.Exec(ctx,
			`UPDATE public.domains SET is_primary = false WHERE tenant_schema = $1`, schemaID); err != nil {
			return fmt.Errorf("demote primary domains: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO public.domains (hostname, tenant_schema, is_primary)
		VALUES ($1, $2, $3)`, hostname, schemaID, isPrimary); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		if pg.IsForeignKeyViolationError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert domain: %w", err)
	}

	return tx.Commit(ctx)
}
