package storage

import (
	"context"
	"fmt"

	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/session"
)

// Sessions returns a session.Store over the tenant-partitioned
// sessions table. All calls must run inside a tenant scope.
func (s *Store) Sessions() session.Store {
	return sessionStore{s}
}

type sessionStore struct {
	store *Store
}

func (ss sessionStore) Create(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.Key == "" {
		return session.ErrInvalidSession
	}

	_, err := ss.store.db(ctx).Exec(ctx, `
		INSERT INTO sessions (key, user_id, username, is_admin, tenant_schema, tenant_domain, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.Key, sess.UserID, sess.Username, sess.IsAdmin, sess.TenantSchema, sess.TenantDomain, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (ss sessionStore) Get(ctx context.Context, key string) (*session.Session, error) {
	row := ss.store.db(ctx).QueryRow(ctx, `
		SELECT key, user_id, username, is_admin, tenant_schema, tenant_domain, created_at, expires_at
		FROM sessions WHERE key = $1`, key)

	var sess session.Session
	err := row.Scan(&sess.Key, &sess.UserID, &sess.Username, &sess.IsAdmin, &sess.TenantSchema, &sess.TenantDomain, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (ss sessionStore) Delete(ctx context.Context, key string) error {
	_, err := ss.store.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (ss sessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := ss.store.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

func (ss sessionStore) DeleteExpired(ctx context.Context) error {
	_, err := ss.store.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}
