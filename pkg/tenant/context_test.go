package tenant_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round-trip", func(t *testing.T) {
		t.Parallel()

		want := testTenant("north")
		ctx := tenant.WithTenant(context.Background(), want)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, want, got)

		schema, ok := tenant.SchemaFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "north", schema)
	})

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		_, ok = tenant.SchemaFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("must panics without tenant", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})
}

// Concurrent requests with different tenants must never observe each
// other's scope: the context is the only carrier of tenant identity.
func TestContextNoCrossTalk(t *testing.T) {
	t.Parallel()

	schemas := []string{"north", "south", "east", "west"}

	var wg sync.WaitGroup
	for _, schema := range schemas {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(schema string) {
				defer wg.Done()
				ctx := tenant.WithTenant(context.Background(), testTenant(schema))
				got := tenant.MustFromContext(ctx)
				assert.Equal(t, schema, got.SchemaID)
			}(schema)
		}
	}
	wg.Wait()
}
