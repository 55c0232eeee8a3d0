package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/pkg/logger"
)

// Credential sources, recorded on the identity for audit logging.
const (
	SourceSessionCookie = "session_cookie"
	SourceSessionHeader = "session_header"
	SourceBearer        = "bearer"
)

// Identity is the authenticated principal attached to a request. It
// always names the tenant the credential was minted in; the middleware
// guarantees this matches the tenant the request resolved to.
type Identity struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	TenantSchema string    `json:"tenant_schema"`
	IsAdmin      bool      `json:"is_admin"`
	Source       string    `json:"-"`
}

type identityContextKey struct{}

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok && id != nil
}

// LoggerExtractor adds the authenticated username to every log record
// carrying a context with an identity.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IdentityFromContext(ctx); ok {
			return slog.String("username", id.Username), true
		}
		return slog.Attr{}, false
	}
}
