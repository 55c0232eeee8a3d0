package session

import "context"

// Store defines session persistence. Implementations are tenant-aware
// through the context: the Postgres store reads the active tenant
// scope from ctx and operates on that tenant's partition only.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by key.
	Get(ctx context.Context, key string) (*Session, error)

	// Delete removes a session by key.
	Delete(ctx context.Context, key string) error

	// DeleteByUserID removes all sessions for a user.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
