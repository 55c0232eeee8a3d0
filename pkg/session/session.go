package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a persisted login session. Rows live in the owning
// tenant's partition; TenantSchema and TenantDomain are denormalized
// onto the session so authenticators can verify that a presented key
// belongs to the tenant the request resolved to without a second
// directory lookup.
type Session struct {
	Key          string    `json:"key"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	IsAdmin      bool      `json:"is_admin"`
	TenantSchema string    `json:"tenant_schema"`
	TenantDomain string    `json:"tenant_domain"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// New creates a session for the given user within the given tenant.
func New(key string, userID uuid.UUID, username string, isAdmin bool, tenantSchema, tenantDomain string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Key:          key,
		UserID:       userID,
		Username:     username,
		IsAdmin:      isAdmin,
		TenantSchema: tenantSchema,
		TenantDomain: tenantDomain,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// IsExpired returns true if the session is past its expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// BelongsTo reports whether the session was minted for the given
// tenant schema.
func (s *Session) BelongsTo(tenantSchema string) bool {
	return s != nil && s.TenantSchema == tenantSchema
}
