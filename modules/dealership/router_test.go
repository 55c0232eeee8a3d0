package dealership_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/modules/dealership"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

// serve builds the dealership router behind a middleware that plants
// the tenant, identity, and grants the real server middleware would.
func serve(t *testing.T, id *auth.Identity, grants rbac.GrantSet) http.Handler {
	t.Helper()

	svc := dealership.NewService(newMemStore(), fakeScope{}, nil)
	router := dealership.Router(dealership.NewHandler(svc, nil))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tenant.WithTenant(r.Context(), &tenant.Tenant{SchemaID: "north", Name: "North", Active: true})
		if id != nil {
			ctx = auth.WithIdentity(ctx, id)
			ctx = rbac.WithGrants(ctx, grants)
		}
		router.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestRouterGuards(t *testing.T) {
	t.Parallel()

	t.Run("anonymous request is rejected", func(t *testing.T) {
		t.Parallel()

		h := serve(t, nil, rbac.GrantSet{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing capability is forbidden", func(t *testing.T) {
		t.Parallel()

		grants, err := rbac.NewGrantSet(rbac.InvoicesRead.String())
		require.NoError(t, err)

		h := serve(t, &auth.Identity{UserID: uuid.New(), Username: "carol", TenantSchema: "north"}, grants)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("granted capability passes", func(t *testing.T) {
		t.Parallel()

		grants, err := rbac.NewGrantSet(rbac.VehiclesRead.String(), rbac.VehiclesWrite.String())
		require.NoError(t, err)
		id := &auth.Identity{UserID: uuid.New(), Username: "carol", TenantSchema: "north"}

		h := serve(t, id, grants)

		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"make":"Toyota","model":"Hilux","license_plate":"NA-1234"}`)
		req := httptest.NewRequest(http.MethodPost, "/vehicles/", body)
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("read capability does not allow writes", func(t *testing.T) {
		t.Parallel()

		grants, err := rbac.NewGrantSet(rbac.VehiclesRead.String())
		require.NoError(t, err)

		h := serve(t, &auth.Identity{UserID: uuid.New(), Username: "carol", TenantSchema: "north"}, grants)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vehicles/", strings.NewReader(`{"make":"Ford"}`))
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin bypasses capability checks", func(t *testing.T) {
		t.Parallel()

		h := serve(t, &auth.Identity{UserID: uuid.New(), Username: "root", TenantSchema: "north", IsAdmin: true}, rbac.GrantSet{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown vehicle returns not found", func(t *testing.T) {
		t.Parallel()

		h := serve(t, &auth.Identity{UserID: uuid.New(), Username: "root", TenantSchema: "north", IsAdmin: true}, rbac.GrantSet{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles/"+uuid.NewString()+"/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
