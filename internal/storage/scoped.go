package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// inScope reports whether ctx already carries a tenant transaction.
func inScope(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey{}).(pgx.Tx)
	return ok
}

// runScoped executes fn inside the scope of the tenant on the context,
// reusing the active transaction when one is already open. This lets
// the session and grant stores be called both from request middleware
// (tenant resolved, no scope yet) and from service code already inside
// RunInTenant without opening a nested transaction.
func (s *Store) runScoped(ctx context.Context, fn func(ctx context.Context) error) error {
	if inScope(ctx) {
		return fn(ctx)
	}
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.RunInTenant(ctx, t, fn)
}

// ScopedSessions returns a session store whose calls scope themselves
// to the tenant on the context. The authenticator chain uses it to
// validate keys after resolution but before any scope exists.
func (s *Store) ScopedSessions() session.Store {
	return &scopedSessionStore{store: s, inner: s.Sessions()}
}

type scopedSessionStore struct {
	store *Store
	inner session.Store
}

func (s *scopedSessionStore) Create(ctx context.Context, sess *session.Session) error {
	return s.store.runScoped(ctx, func(ctx context.Context) error {
		return s.inner.Create(ctx, sess)
	})
}

func (s *scopedSessionStore) Get(ctx context.Context, key string) (*session.Session, error) {
	var sess *session.Session
	err := s.store.runScoped(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.inner.Get(ctx, key)
		return err
	})
	return sess, err
}

func (s *scopedSessionStore) Delete(ctx context.Context, key string) error {
	return s.store.runScoped(ctx, func(ctx context.Context) error {
		return s.inner.Delete(ctx, key)
	})
}

func (s *scopedSessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	return s.store.runScoped(ctx, func(ctx context.Context) error {
		return s.inner.DeleteByUserID(ctx, userID)
	})
}

func (s *scopedSessionStore) DeleteExpired(ctx context.Context) error {
	return s.store.runScoped(ctx, func(ctx context.Context) error {
		return s.inner.DeleteExpired(ctx)
	})
}

// ScopedGrants returns a grant source whose lookups scope themselves
// to the tenant on the context, for the per-request grant loading
// middleware.
func (s *Store) ScopedGrants() rbac.GrantSource {
	return &scopedGrantSource{store: s, inner: s.Grants()}
}

type scopedGrantSource struct {
	store *Store
	inner rbac.GrantSource
}

func (s *scopedGrantSource) GrantsForUser(ctx context.Context, userID uuid.UUID) (rbac.GrantSet, error) {
	var grants rbac.GrantSet
	err := s.store.runScoped(ctx, func(ctx context.Context) error {
		var err error
		grants, err = s.inner.GrantsForUser(ctx, userID)
		return err
	})
	return grants, err
}
