package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// UserStore is the subset of the storage layer the accounts service
// needs for user records. Calls run inside a tenant scope.
type UserStore interface {
	CreateUser(ctx context.Context, u *storage.User) error
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*storage.User, error)
	ListUsers(ctx context.Context) ([]*storage.User, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
}

// GrantStore manages capability grants. Calls run inside a tenant
// scope.
type GrantStore interface {
	GrantCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error
	RevokeCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error
	Grants() rbac.GrantSource
}

// Config holds accounts module settings.
type Config struct {
	// BaseScheme is used when composing a tenant's api_base_url from
	// its primary domain.
	BaseScheme string `env:"ACCOUNTS_BASE_SCHEME" envDefault:"https"`
}

// Service implements tenant-scoped account operations and the
// universal login.
type Service struct {
	users    UserStore
	grants   GrantStore
	dir      tenant.Directory
	scope    tenant.Scope
	sessions *session.Manager
	tokens   *auth.TokenService
	cfg      Config
	authCfg  auth.Config
	log      *slog.Logger
}

// NewService creates the accounts service.
func NewService(
	users UserStore,
	grants GrantStore,
	dir tenant.Directory,
	scope tenant.Scope,
	sessions *session.Manager,
	tokens *auth.TokenService,
	cfg Config,
	authCfg auth.Config,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		users:    users,
		grants:   grants,
		dir:      dir,
		scope:    scope,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		authCfg:  authCfg,
		log:      log,
	}
}

// LoginResult is the successful outcome of a universal login.
type LoginResult struct {
	User       *storage.User   `json:"user"`
	Tenant     *tenant.Tenant  `json:"tenant"`
	APIBaseURL string          `json:"api_base_url"`
	Session    *session.Session `json:"-"`
}

// UniversalLogin authenticates a username and password without a
// tenant signal by scanning active dealerships in creation order. The
// first tenant holding a matching active user wins. Every failure
// mode, including a scan deadline hit, collapses to
// auth.ErrInvalidCredentials so responses never reveal which
// dealership a username exists in.
func (s *Service) UniversalLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.authCfg.LoginTimeout)
	defer cancel()

	tenants, err := s.dir.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants for login: %w", err)
	}

	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			s.log.WarnContext(ctx, "universal login scan hit deadline",
				logger.Username(username),
				logger.Component("accounts"),
			)
			return nil, auth.ErrInvalidCredentials
		}

		result, err := s.loginInTenant(ctx, t, username, password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				continue
			}
			return nil, err
		}
		return result, nil
	}

	return nil, auth.ErrInvalidCredentials
}

// AdminLogin authenticates against the platform partition only.
// Administrative paths resolve to the public tenant, which the
// universal scan skips, so platform operators obtain their sessions
// through this path. Failures collapse to auth.ErrInvalidCredentials
// the same way the universal login does.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.authCfg.LoginTimeout)
	defer cancel()

	t, err := s.dir.GetBySchema(ctx, tenant.PublicSchema)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, tenant.ErrPublicTenantMissing
		}
		return nil, err
	}
	return s.loginInTenant(ctx, t, username, password)
}

// loginInTenant attempts a credential match inside one tenant's scope.
func (s *Service) loginInTenant(ctx context.Context, t *tenant.Tenant, username, password string) (*LoginResult, error) {
	var result *LoginResult

	err := s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		user, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return auth.ErrInvalidCredentials
			}
			return err
		}
		if !user.IsActive {
			return auth.ErrInvalidCredentials
		}
		if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
			return err
		}

		// The row's denormalized tenant must agree with the schema the
		// scan found it in. Disagreement is data corruption; skip the
		// tenant rather than log the user into the wrong dealership.
		if user.TenantSchema != t.SchemaID {
			s.log.WarnContext(ctx, "user row tenant does not match scanned schema",
				logger.Username(username),
				slog.String("row_tenant", user.TenantSchema),
				slog.String("scanned_tenant", t.SchemaID),
				logger.Component("accounts"),
			)
			return auth.ErrInvalidCredentials
		}

		domain := ""
		if d, err := s.dir.PrimaryDomain(ctx, t.SchemaID); err == nil {
			domain = d.Hostname
		}

		sess, err := s.sessions.Issue(ctx, user.ID, user.Username, user.IsAdmin, t, domain)
		if err != nil {
			return fmt.Errorf("issue session: %w", err)
		}

		apiBase := ""
		if domain != "" {
			apiBase = s.cfg.BaseScheme + "://" + domain
		}

		result = &LoginResult{User: user, Tenant: t, APIBaseURL: apiBase, Session: sess}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "login succeeded",
		logger.Username(username),
		slog.String("tenant_schema", t.SchemaID),
		logger.Component("accounts"),
	)
	return result, nil
}

// Logout destroys the presented session. Runs inside the current
// tenant's scope.
func (s *Service) Logout(ctx context.Context, key string) error {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		return s.sessions.Destroy(ctx, key)
	})
}

// CreateUserParams are the inputs for creating a tenant user.
type CreateUserParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser creates a user in the current tenant's partition.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*storage.User, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	params.Username = strings.TrimSpace(params.Username)
	if params.Username == "" {
		return nil, ErrUsernameRequired
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &storage.User{
		Username:     params.Username,
		Email:        strings.TrimSpace(params.Email),
		PasswordHash: hash,
		IsAdmin:      params.IsAdmin,
		IsActive:     true,
		TenantSchema: t.SchemaID,
	}

	err = s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns the current tenant's users.
func (s *Service) ListUsers(ctx context.Context) ([]*storage.User, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	var users []*storage.User
	err := s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		var err error
		users, err = s.users.ListUsers(ctx)
		return err
	})
	return users, err
}

// UserCapabilities returns the capabilities granted to a user in the
// current tenant.
func (s *Service) UserCapabilities(ctx context.Context, userID uuid.UUID) ([]rbac.Capability, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}

	var caps []rbac.Capability
	err := s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		grants, err := s.grants.Grants().GrantsForUser(ctx, userID)
		if err != nil {
			return err
		}
		caps = grants.List()
		return nil
	})
	return caps, err
}

// Grant adds a capability to a user in the current tenant.
func (s *Service) Grant(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return s.grants.GrantCapability(ctx, userID, c)
	})
}

// Revoke removes a capability from a user in the current tenant.
func (s *Service) Revoke(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrNoTenantInContext
	}
	return s.scope.RunInTenant(ctx, t, func(ctx context.Context) error {
		return s.grants.RevokeCapability(ctx, userID, c)
	})
}

// IssueTokenPair mints a bearer token pair for an authenticated
// identity, bound to its tenant.
func (s *Service) IssueTokenPair(id *auth.Identity) (*auth.TokenPair, error) {
	return s.tokens.GenerateTokenPair(id)
}
