package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRouter opens a private in-memory SQLite database behind a prefix-strategy router.
// One connection keeps writers serialized the way SQLite requires.
func newTestRouter(t *testing.T) *tenant.Router {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	base, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	pool, err := base.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = pool.Close() })

	router, err := tenant.NewRouter(base, tenant.SQLiteDialector, tenant.Config{
		Strategy:    tenant.StrategyPrefix,
		CacheSize:   8,
		AutoMigrate: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}, MigrateNamespace, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(router.Close)

	return router
}

// tenantCtx binds a fresh tenant to a background context
func tenantCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, err := tenancy.Bind(context.Background(), uuid.New())
	require.NoError(t, err)
	return ctx
}
