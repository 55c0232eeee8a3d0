package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
)

// Grants returns an rbac.GrantSource over the tenant-partitioned
// capability_grants table.
func (s *Store) Grants() rbac.GrantSource {
	return grantSource{s}
}

type grantSource struct {
	store *Store
}

func (g grantSource) GrantsForUser(ctx context.Context, userID uuid.UUID) (rbac.GrantSet, error) {
	rows, err := g.store.db(ctx).Query(ctx,
		`SELECT capability FROM capability_grants WHERE user_id = $1`, userID)
	if err != nil {
		return rbac.GrantSet{}, fmt.Errorf("load grants: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return rbac.GrantSet{}, fmt.Errorf("scan grant: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return rbac.GrantSet{}, err
	}
	return rbac.NewGrantSet(names...)
}

// GrantCapability grants a capability to a user. Idempotent.
func (s *Store) GrantCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	if !c.IsValid() {
		return rbac.ErrUnknownCapability
	}

	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO capability_grants (user_id, capability, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, capability) DO NOTHING`,
		userID, string(c),
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("grant capability: %w", err)
	}
	return nil
}

// RevokeCapability removes a capability from a user. Idempotent.
func (s *Store) RevokeCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	_, err := s.db(ctx).Exec(ctx,
		`DELETE FROM capability_grants WHERE user_id = $1 AND capability = $2`,
		userID, string(c),
	)
	if err != nil {
		return fmt.Errorf("revoke capability: %w", err)
	}
	return nil
}
