package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTokenService(t *testing.T, accessTTL time.Duration) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(testSigningKey, "dealerdesk-test", accessTTL, 24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestTokenService(t *testing.T) {
	t.Parallel()

	t.Run("round-trip", func(t *testing.T) {
		t.Parallel()

		svc := newTokenService(t, time.Hour)

		userID := uuid.New()
		pair, err := svc.GenerateTokenPair(&auth.Identity{
			UserID:       userID,
			Username:     "alice",
			IsAdmin:      true,
			TenantSchema: "north",
		})
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, int64(3600), pair.ExpiresIn)

		claims, err := svc.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.True(t, claims.IsAdmin)
		assert.Equal(t, "north", claims.TenantSchema)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		svc := newTokenService(t, -time.Minute)

		pair, err := svc.GenerateTokenPair(&auth.Identity{UserID: uuid.New(), Username: "alice", TenantSchema: "north"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()

		svc := newTokenService(t, time.Hour)
		other, err := auth.NewTokenService("another-key-another-key-another-key", "dealerdesk-test", time.Hour, time.Hour)
		require.NoError(t, err)

		pair, err := svc.GenerateTokenPair(&auth.Identity{UserID: uuid.New(), Username: "alice", TenantSchema: "north"})
		require.NoError(t, err)

		_, err = other.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		t.Parallel()

		_, err := auth.NewTokenService("", "x", time.Hour, time.Hour)
		assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
	})
}

func TestBearerAuthenticator(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t, time.Hour)
	a := auth.NewBearerAuthenticator(svc, nil)

	issue := func(t *testing.T, schema string) string {
		t.Helper()
		pair, err := svc.GenerateTokenPair(&auth.Identity{UserID: uuid.New(), Username: "alice", TenantSchema: schema})
		require.NoError(t, err)
		return pair.AccessToken
	}

	t.Run("valid token in matching tenant", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), testTenant("north"))
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+issue(t, "north"))

		id, err := a.Authenticate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, "north", id.TenantSchema)
		assert.Equal(t, auth.SourceBearer, id.Source)
	})

	t.Run("token for another tenant fails", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), testTenant("south"))
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+issue(t, "north"))

		_, err := a.Authenticate(ctx, r)
		assert.ErrorIs(t, err, auth.ErrTenantMismatch)
	})

	t.Run("no authorization header", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), testTenant("north"))
		_, err := a.Authenticate(ctx, httptest.NewRequest("GET", "/", nil))
		assert.ErrorIs(t, err, auth.ErrNoCredentials)
	})

	t.Run("non-bearer authorization header", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), testTenant("north"))
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		_, err := a.Authenticate(ctx, r)
		assert.ErrorIs(t, err, auth.ErrNoCredentials)
	})
}
