package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// Authenticator attempts to establish an identity from one kind of
// request credential. ErrNoCredentials means the credential is absent
// and the chain should try the next authenticator; any other error is
// a failed credential of this kind.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)
}

// Chain tries authenticators in order and returns the first identity.
// A failed credential does not stop the chain: a stale session cookie
// must not block a valid bearer token on the same request.
type Chain struct {
	authenticators []Authenticator
	log            *slog.Logger
}

// NewChain builds an authenticator chain.
func NewChain(log *slog.Logger, authenticators ...Authenticator) *Chain {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Chain{authenticators: authenticators, log: log}
}

// Authenticate runs the chain. Returns ErrUnauthenticated when no
// authenticator produced an identity.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) (*Identity, error) {
	for _, a := range c.authenticators {
		id, err := a.Authenticate(ctx, r)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		c.log.DebugContext(ctx, "credential rejected", logger.Error(err))
	}
	return nil, ErrUnauthenticated
}

// SessionAuthenticator validates a session key carried by the given
// transport against the current tenant's session partition.
type SessionAuthenticator struct {
	manager   *session.Manager
	transport session.Transport
	source    string
	log       *slog.Logger
}

// NewSessionAuthenticator creates a session-key authenticator. source
// labels the transport for audit logs (SourceSessionCookie or
// SourceSessionHeader).
func NewSessionAuthenticator(manager *session.Manager, transport session.Transport, source string, log *slog.Logger) *SessionAuthenticator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SessionAuthenticator{
		manager:   manager,
		transport: transport,
		source:    source,
		log:       log,
	}
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Identity, error) {
	key, err := a.transport.GetKey(r)
	if err != nil {
		return nil, ErrNoCredentials
	}

	s, err := a.manager.Validate(ctx, key)
	if err != nil {
		return nil, err
	}

	// A key that decodes and resolves to a session still fails when the
	// session was minted in a different tenant than the request
	// resolved to. This is the cross-tenant replay guard.
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	if !s.BelongsTo(t.SchemaID) {
		a.log.WarnContext(ctx, "session presented against wrong tenant",
			logger.Username(s.Username),
			slog.String("session_tenant", s.TenantSchema),
			slog.String("request_tenant", t.SchemaID),
			logger.Component("auth"),
		)
		return nil, ErrTenantMismatch
	}

	return &Identity{
		UserID:       s.UserID,
		Username:     s.Username,
		TenantSchema: s.TenantSchema,
		IsAdmin:      s.IsAdmin,
		Source:       a.source,
	}, nil
}
