package persistence

import (
	"context"
	"testing"

	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantDirectory(t *testing.T) {
	router := newTestRouter(t)
	directory := NewGormTenantDirectory(router)
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{first, second} {
		namespace, err := router.Provision(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, tenancy.Namespace(id), namespace)
		require.NoError(t, directory.Register(ctx, id, namespace))
	}

	t.Run("re-registering is a no-op", func(t *testing.T) {
		require.NoError(t, directory.Register(ctx, first, tenancy.Namespace(first)))

		entries, err := directory.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, first, entries[0].TenantID)
		assert.Equal(t, second, entries[1].TenantID)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := directory.Exists(ctx, second)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = directory.Exists(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
