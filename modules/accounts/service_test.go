package accounts_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/modules/accounts"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// fakeScope executes the callback with the tenant on the context,
// standing in for the search_path-pinned transaction.
type fakeScope struct{}

func (fakeScope) RunInTenant(ctx context.Context, t *tenant.Tenant, fn func(ctx context.Context) error) error {
	return fn(tenant.WithTenant(ctx, t))
}

// fakeUsers partitions users by the tenant on the context, mirroring
// the schema-per-tenant layout.
type fakeUsers struct {
	mu         sync.Mutex
	partitions map[string]map[string]*storage.User // schema -> username -> user
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{partitions: make(map[string]map[string]*storage.User)}
}

func (f *fakeUsers) partition(ctx context.Context) (map[string]*storage.User, error) {
	schema, ok := tenant.SchemaFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	if f.partitions[schema] == nil {
		f.partitions[schema] = make(map[string]*storage.User)
	}
	return f.partitions[schema], nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, u *storage.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	part, err := f.partition(ctx)
	if err != nil {
		return err
	}
	if _, exists := part[u.Username]; exists {
		return storage.ErrDuplicate
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	part[u.Username] = u
	return nil
}

func (f *fakeUsers) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	part, err := f.partition(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := part[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	part, err := f.partition(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range part {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]*storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	part, err := f.partition(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*storage.User, 0, len(part))
	for _, u := range part {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUsers) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	u, err := f.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}

// fakeGrants adapts the in-memory grant source to the GrantStore
// interface.
type fakeGrants struct {
	source *rbac.MemoryGrantSource
}

func (f *fakeGrants) GrantCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	return f.source.Grant(userID, c)
}

func (f *fakeGrants) RevokeCapability(ctx context.Context, userID uuid.UUID, c rbac.Capability) error {
	f.source.Revoke(userID, c)
	return nil
}

func (f *fakeGrants) Grants() rbac.GrantSource { return f.source }

// fakeDirectory with deterministic creation order for the login scan.
type fakeDirectory struct {
	ordered []*tenant.Tenant
	domains map[string]string // schema -> primary hostname
}

func (d *fakeDirectory) GetBySchema(ctx context.Context, schemaID string) (*tenant.Tenant, error) {
	for _, t := range d.ordered {
		if t.SchemaID == schemaID {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) GetByHostname(ctx context.Context, hostname string) (*tenant.Tenant, error) {
	for schema, h := range d.domains {
		if h == hostname {
			return d.GetBySchema(ctx, schema)
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (d *fakeDirectory) PrimaryDomain(ctx context.Context, schemaID string) (*tenant.Domain, error) {
	if h, ok := d.domains[schemaID]; ok {
		return &tenant.Domain{Hostname: h, TenantSchema: schemaID, IsPrimary: true}, nil
	}
	return nil, tenant.ErrDomainNotFound
}

func (d *fakeDirectory) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	for _, t := range d.ordered {
		if t.Active && !t.IsPublic() {
			out = append(out, t)
		}
	}
	return out, nil
}

type fixture struct {
	service *accounts.Service
	users   *fakeUsers
	dir     *fakeDirectory
	manager *session.Manager
	public  *tenant.Tenant
	north   *tenant.Tenant
	south   *tenant.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTimeout(t, 5*time.Second)
}

func newFixtureWithTimeout(t *testing.T, loginTimeout time.Duration) *fixture {
	t.Helper()

	now := time.Now()
	public := &tenant.Tenant{SchemaID: tenant.PublicSchema, Name: "Platform", Active: true, CreatedAt: now.Add(-3 * time.Hour)}
	north := &tenant.Tenant{SchemaID: "north", Name: "North Motors", Active: true, CreatedAt: now.Add(-2 * time.Hour)}
	south := &tenant.Tenant{SchemaID: "south", Name: "South Autos", Active: true, CreatedAt: now.Add(-time.Hour)}

	dir := &fakeDirectory{
		ordered: []*tenant.Tenant{public, north, south},
		domains: map[string]string{
			"north": "north.dealerdesk.test",
			"south": "south.dealerdesk.test",
		},
	}

	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	manager, err := session.NewManager(store, session.Config{TTL: time.Hour})
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("test-secret-test-secret-test-secret", "test", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	users := newFakeUsers()
	grants := &fakeGrants{source: rbac.NewMemoryGrantSource()}

	svc := accounts.NewService(users, grants, dir, fakeScope{}, manager, tokens,
		accounts.Config{BaseScheme: "https"},
		auth.Config{LoginTimeout: loginTimeout},
		nil,
	)

	return &fixture{service: svc, users: users, dir: dir, manager: manager, public: public, north: north, south: south}
}

func (f *fixture) addUser(t *testing.T, tn *tenant.Tenant, username, password string, active bool) *storage.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	u := &storage.User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     active,
		TenantSchema: tn.SchemaID,
	}
	ctx := tenant.WithTenant(context.Background(), tn)
	require.NoError(t, f.users.CreateUser(ctx, u))
	return u
}

func TestUniversalLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("finds the user without any tenant signal", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.south, "alice", "open sesame 123", true)

		result, err := f.service.UniversalLogin(ctx, "alice", "open sesame 123")
		require.NoError(t, err)
		assert.Equal(t, "south", result.Tenant.SchemaID)
		assert.Equal(t, "https://south.dealerdesk.test", result.APIBaseURL)
		require.NotNil(t, result.Session)

		// The session must already be persisted in south's partition.
		scopedCtx := tenant.WithTenant(ctx, f.south)
		s, err := f.manager.Validate(scopedCtx, result.Session.Key)
		require.NoError(t, err)
		assert.Equal(t, "south", s.TenantSchema)
		assert.Equal(t, "south.dealerdesk.test", s.TenantDomain)
	})

	t.Run("same username in two tenants: password decides", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.north, "alice", "norths password 1", true)
		f.addUser(t, f.south, "alice", "souths password 2", true)

		result, err := f.service.UniversalLogin(ctx, "alice", "souths password 2")
		require.NoError(t, err)
		assert.Equal(t, "south", result.Tenant.SchemaID)

		result, err = f.service.UniversalLogin(ctx, "alice", "norths password 1")
		require.NoError(t, err)
		assert.Equal(t, "north", result.Tenant.SchemaID)
	})

	t.Run("identical credentials in two tenants: oldest tenant wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.north, "bob", "shared password 9", true)
		f.addUser(t, f.south, "bob", "shared password 9", true)

		result, err := f.service.UniversalLogin(ctx, "bob", "shared password 9")
		require.NoError(t, err)
		assert.Equal(t, "north", result.Tenant.SchemaID)
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.service.UniversalLogin(ctx, "nobody", "whatever pass")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.north, "alice", "right password 1", true)

		_, err := f.service.UniversalLogin(ctx, "alice", "wrong password 1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive user is invisible", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.north, "alice", "valid password 1", false)

		_, err := f.service.UniversalLogin(ctx, "alice", "valid password 1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("scan deadline fails closed", func(t *testing.T) {
		t.Parallel()

		f := newFixtureWithTimeout(t, time.Nanosecond)
		f.addUser(t, f.north, "alice", "valid password 1", true)

		// Even valid credentials are rejected once the scan budget is
		// exhausted, so a slow directory never half-answers.
		_, err := f.service.UniversalLogin(ctx, "alice", "valid password 1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("blank input", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.service.UniversalLogin(ctx, "", "")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("platform operator logs into the public partition", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.public, "root", "platform password 9", true)

		result, err := f.service.AdminLogin(ctx, "root", "platform password 9")
		require.NoError(t, err)
		assert.Equal(t, tenant.PublicSchema, result.Tenant.SchemaID)
		require.NotNil(t, result.Session)

		// The session must be persisted where the admin plane's
		// cookie chain will look for it.
		scopedCtx := tenant.WithTenant(ctx, f.public)
		s, err := f.manager.Validate(scopedCtx, result.Session.Key)
		require.NoError(t, err)
		assert.Equal(t, tenant.PublicSchema, s.TenantSchema)
	})

	t.Run("universal scan never reaches the public partition", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.public, "root", "platform password 9", true)

		_, err := f.service.UniversalLogin(ctx, "root", "platform password 9")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = f.service.AdminLogin(ctx, "root", "platform password 9")
		assert.NoError(t, err)
	})

	t.Run("dealership users cannot enter the admin plane", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.north, "alice", "norths password 1", true)

		_, err := f.service.AdminLogin(ctx, "alice", "norths password 1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addUser(t, f.public, "root", "platform password 9", true)

		_, err := f.service.AdminLogin(ctx, "root", "wrong password 99")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("missing public tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.dir.ordered = f.dir.ordered[1:] // drop the public entry

		_, err := f.service.AdminLogin(ctx, "root", "platform password 9")
		assert.ErrorIs(t, err, tenant.ErrPublicTenantMissing)
	})
}

// Interleaved operations against two dealerships must never observe
// each other's rows, even while the universal scan walks both.
func TestConcurrentScopesStayPartitioned(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	const perTenant = 6
	var wg sync.WaitGroup
	for _, tn := range []*tenant.Tenant{f.north, f.south} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := tenant.WithTenant(context.Background(), tn)
			for i := 0; i < perTenant; i++ {
				username := fmt.Sprintf("%s-user-%d", tn.SchemaID, i)
				_, err := f.service.CreateUser(ctx, accounts.CreateUserParams{
					Username: username,
					Password: "a long password 123",
				})
				assert.NoError(t, err)

				result, err := f.service.UniversalLogin(context.Background(), username, "a long password 123")
				if assert.NoError(t, err) {
					assert.Equal(t, tn.SchemaID, result.Tenant.SchemaID)
				}

				users, err := f.service.ListUsers(ctx)
				if assert.NoError(t, err) {
					for _, u := range users {
						assert.Equal(t, tn.SchemaID, u.TenantSchema)
					}
				}
			}
		}()
	}
	wg.Wait()

	for _, tn := range []*tenant.Tenant{f.north, f.south} {
		users, err := f.service.ListUsers(tenant.WithTenant(context.Background(), tn))
		require.NoError(t, err)
		require.Len(t, users, perTenant)
		for _, u := range users {
			assert.Equal(t, tn.SchemaID, u.TenantSchema)
		}
	}
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	t.Run("creates in resolved tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := tenant.WithTenant(context.Background(), f.north)

		u, err := f.service.CreateUser(ctx, accounts.CreateUserParams{
			Username: "carol",
			Email:    "carol@north.example",
			Password: "a long password",
		})
		require.NoError(t, err)
		assert.Equal(t, "north", u.TenantSchema)
		assert.True(t, u.IsActive)
		assert.NotEmpty(t, u.PasswordHash)

		users, err := f.service.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
	})

	t.Run("duplicate username within tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := tenant.WithTenant(context.Background(), f.north)

		_, err := f.service.CreateUser(ctx, accounts.CreateUserParams{Username: "carol", Password: "a long password"})
		require.NoError(t, err)

		_, err = f.service.CreateUser(ctx, accounts.CreateUserParams{Username: "carol", Password: "other password 1"})
		assert.ErrorIs(t, err, accounts.ErrUsernameTaken)
	})

	t.Run("same username allowed in another tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, err := f.service.CreateUser(tenant.WithTenant(context.Background(), f.north),
			accounts.CreateUserParams{Username: "carol", Password: "a long password"})
		require.NoError(t, err)

		_, err = f.service.CreateUser(tenant.WithTenant(context.Background(), f.south),
			accounts.CreateUserParams{Username: "carol", Password: "a long password"})
		assert.NoError(t, err)
	})

	t.Run("no tenant in context", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.service.CreateUser(context.Background(), accounts.CreateUserParams{Username: "x", Password: "a long password"})
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})
}

func TestCapabilityManagement(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := tenant.WithTenant(context.Background(), f.north)

	u, err := f.service.CreateUser(ctx, accounts.CreateUserParams{Username: "carol", Password: "a long password"})
	require.NoError(t, err)

	require.NoError(t, f.service.Grant(ctx, u.ID, rbac.VehiclesRead))
	require.NoError(t, f.service.Grant(ctx, u.ID, rbac.InvoicesWrite))

	caps, err := f.service.UserCapabilities(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.InvoicesWrite, rbac.VehiclesRead}, caps)

	require.NoError(t, f.service.Revoke(ctx, u.ID, rbac.VehiclesRead))
	caps, err = f.service.UserCapabilities(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.InvoicesWrite}, caps)

	// Granting to a user that does not exist in this tenant fails.
	err = f.service.Grant(ctx, uuid.New(), rbac.VehiclesRead)
	assert.ErrorIs(t, err, accounts.ErrUserNotFound)
}
