package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// Manager mints, validates, and destroys sessions against a Store.
// The store the manager talks to is tenant-aware via the context, so
// every manager call must run inside the owning tenant's scope.
type Manager struct {
	store  Store
	config Config
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	return &Manager{store: store, config: cfg}, nil
}

// Issue mints a new session for the user within the given tenant and
// persists it. The key is only returned after the store confirms the
// write; a key that cannot be validated later must never reach the
// client.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID, username string, isAdmin bool, t *tenant.Tenant, domain string) (*Session, error) {
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	s := New(key, userID, username, isAdmin, t.SchemaID, domain, m.config.TTL)
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate looks up the session for a presented key. Expired sessions
// are deleted on sight.
func (m *Manager) Validate(ctx context.Context, key string) (*Session, error) {
	if key == "" {
		return nil, ErrSessionNotFound
	}

	s, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.IsExpired() {
		_ = m.store.Delete(ctx, key)
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Destroy removes the session for the given key. A missing session is
// not an error; logout is idempotent.
func (m *Manager) Destroy(ctx context.Context, key string) error {
	err := m.store.Delete(ctx, key)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// DestroyAllForUser removes every session belonging to the user, e.g.
// after a password change or account deactivation.
func (m *Manager) DestroyAllForUser(ctx context.Context, userID uuid.UUID) error {
	return m.store.DeleteByUserID(ctx, userID.String())
}

// TTL reports the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// generateKey creates a cryptographically secure session key.
func generateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrKeyGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
