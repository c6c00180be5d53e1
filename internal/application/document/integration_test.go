package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ledger struct {
	definitions *DefinitionService
	documents   *DocumentService
	registry    *persistence.GormRegistryRepository
}

func newLedger(t *testing.T) *ledger {
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
		CacheSize:   4,
		AutoMigrate: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}, persistence.MigrateNamespace, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(router.Close)

	defRepo := persistence.NewGormDefinitionRepository(router)
	registry := persistence.NewGormRegistryRepository(router)
	definitions := NewDefinitionService(defRepo, fastNumbering(3))
	documents := NewDocumentService(defRepo, persistence.NewGormHeaderRepository(router), registry,
		definitions, persistence.NewGormUnitOfWork(router))

	return &ledger{definitions: definitions, documents: documents, registry: registry}
}

func (l *ledger) definition(t *testing.T, ctx context.Context, code, module string) *DefinitionResponse {
	t.Helper()
	def, err := l.definitions.Create(ctx, CreateDefinitionRequest{Name: code, Code: code, Prefix: code, Module: module})
	require.NoError(t, err)
	return def
}

func TestLedger_FailedCreateLeavesNoGap(t *testing.T) {
	l := newLedger(t)
	ctx := tenantContext(t)
	def := l.definition(t, ctx, "FAC", "SALES")

	_, err := l.documents.Create(ctx, uuid.New(), CreateDocumentRequest{
		DefinitionID: def.ID,
		Lines:        []LineRequest{lineRequest("Widget", -1, 10)},
	})
	require.Error(t, err)

	doc, err := l.documents.Create(ctx, uuid.New(), CreateDocumentRequest{DefinitionID: def.ID})
	require.NoError(t, err)
	assert.Equal(t, "FAC000001", doc.DocumentNumber)

	stored, err := l.definitions.GetByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.NextNumber)
}

func TestLedger_ActivateAndRebuild(t *testing.T) {
	l := newLedger(t)
	ctx := tenantContext(t)
	def := l.definition(t, ctx, "CMP", "PURCHASES")

	doc, err := l.documents.Create(ctx, uuid.New(), CreateDocumentRequest{
		DefinitionID: def.ID,
		Lines:        []LineRequest{lineRequest("Widget", 4, 25)},
	})
	require.NoError(t, err)
	_, err = l.documents.AddLine(ctx, doc.ID, lineRequest("Bolt", 10, 1))
	require.NoError(t, err)

	activated, err := l.documents.Activate(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", activated.Status)
	assert.True(t, decimal.NewFromInt(110).Equal(activated.TotalAmount))

	_, err = l.documents.Activate(ctx, doc.ID)
	require.Error(t, err, "second activation must not post twice")

	rows, err := l.registry.FindByHeader(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, document.TransactionStockIn, rows[0].Type)

	result, err := l.documents.RebuildRegistry(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Removed)
	assert.Equal(t, 2, result.Written)

	totals, err := l.documents.SummarizeRegistry(ctx, RegistryListFilter{})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(2), totals[0].Entries)
	assert.True(t, decimal.NewFromInt(14).Equal(totals[0].Quantity))
	assert.True(t, decimal.NewFromInt(110).Equal(totals[0].Value))
}

func TestLedger_DeactivatedDefinitionIssuesNothing(t *testing.T) {
	l := newLedger(t)
	ctx := tenantContext(t)
	def := l.definition(t, ctx, "AJU", "INVENTORY")

	_, err := l.definitions.Deactivate(ctx, def.ID)
	require.NoError(t, err)

	_, err = l.documents.Create(ctx, uuid.New(), CreateDocumentRequest{DefinitionID: def.ID})
	require.Error(t, err)

	stored, err := l.definitions.GetByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.NextNumber)
}
