//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresRouter starts a PostgreSQL container and returns a schema-per-tenant router over it
func newPostgresRouter(t *testing.T) *tenant.Router {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	base, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	pool, err := base.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(16)
	t.Cleanup(func() { _ = pool.Close() })

	router, err := tenant.NewRouter(base, tenant.PostgresDialector, tenant.Config{
		Strategy:    tenant.StrategySchema,
		CacheSize:   8,
		AutoMigrate: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}, MigrateNamespace, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(router.Close)
	return router
}

func TestPostgres_SchemaPerTenantIsolation(t *testing.T) {
	router := newPostgresRouter(t)
	repo := NewGormDefinitionRepository(router)
	tenantA, tenantB := tenantCtx(t), tenantCtx(t)

	def := createDefinition(t, tenantA, repo, "FAC", document.ModuleSales)

	_, err := repo.FindByID(tenantB, def.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// The same code is free in another tenant's schema
	createDefinition(t, tenantB, repo, "FAC", document.ModuleSales)

	var schemas int64
	db, err := router.SharedDB(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Raw(
		"SELECT count(*) FROM information_schema.schemata WHERE schema_name LIKE 't\\_%'",
	).Scan(&schemas).Error)
	assert.Equal(t, int64(2), schemas)
}

func TestPostgres_ConcurrentNumberingIsGapless(t *testing.T) {
	router := newPostgresRouter(t)
	repo := NewGormDefinitionRepository(router)
	ctx := tenantCtx(t)
	def := createDefinition(t, ctx, repo, "REM", document.ModuleInventory)

	const workers = 8
	const perWorker = 5

	var (
		mu     sync.Mutex
		issued = make(map[string]bool)
		wg     sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < perWorker; {
				number, err := repo.NextNumber(ctx, def.ID)
				if err != nil {
					if !assert.ErrorIs(t, err, shared.ErrConcurrencyConflict) {
						return
					}
					continue
				}
				mu.Lock()
				issued[number] = true
				mu.Unlock()
				n++
			}
		}()
	}
	wg.Wait()

	require.Len(t, issued, workers*perWorker)
	for i := 1; i <= workers*perWorker; i++ {
		assert.True(t, issued[document.FormatNumber("REM", int64(i))], "number %d issued", i)
	}

	stored, err := repo.FindByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker+1), stored.NextNumber)
}
