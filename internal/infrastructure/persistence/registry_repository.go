package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const registryBatchSize = 500

// GormRegistryRepository implements document.RegistryRepository using GORM.
// Rows are only ever inserted, or deleted per document when it is replayed.
type GormRegistryRepository struct {
	db DBProvider
}

var _ document.RegistryRepository = (*GormRegistryRepository)(nil)

// NewGormRegistryRepository creates a new GormRegistryRepository
func NewGormRegistryRepository(db DBProvider) *GormRegistryRepository {
	return &GormRegistryRepository{db: db}
}

// Append inserts ledger rows in batches
func (r *GormRegistryRepository) Append(ctx context.Context, entries []document.RegistryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	rows := make([]models.TransactionRegistryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.TransactionRegistryModelFromDomain(e)
	}
	return translate(db.CreateInBatches(rows, registryBatchSize).Error)
}

// DeleteByHeader removes the rows of one document
func (r *GormRegistryRepository) DeleteByHeader(ctx context.Context, headerID uuid.UUID) (int64, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return 0, err
	}
	result := db.Where("header_id = ?", headerID).Delete(&models.TransactionRegistryModel{})
	return result.RowsAffected, result.Error
}

// FindByHeader returns the rows of one document ordered by creation
func (r *GormRegistryRepository) FindByHeader(ctx context.Context, headerID uuid.UUID) ([]document.RegistryEntry, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var rows []models.TransactionRegistryModel
	if err := db.Where("header_id = ?", headerID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

// Find lists rows matching filter
func (r *GormRegistryRepository) Find(ctx context.Context, filter document.RegistryFilter, page shared.Filter) ([]document.RegistryEntry, int64, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	query := applyRegistryFilter(db.Model(&models.TransactionRegistryModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(page.Page, page.PageSize)
	var rows []models.TransactionRegistryModel
	if err := query.Order(orderClause(page.OrderBy, page.OrderDir, RegistrySortFields, "transaction_date")).
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toEntries(rows), total, nil
}

type registryTotalRow struct {
	Type     document.TransactionType
	Entries  int64
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// Summarize totals rows per transaction type
func (r *GormRegistryRepository) Summarize(ctx context.Context, filter document.RegistryFilter) ([]document.RegistryTotal, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []registryTotalRow
	err = applyRegistryFilter(db.Model(&models.TransactionRegistryModel{}), filter).
		Select("type, COUNT(*) AS entries, COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(value), 0) AS value").
		Group("type").
		Order("type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]document.RegistryTotal, len(rows))
	for i, row := range rows {
		totals[i] = document.RegistryTotal(row)
	}
	return totals, nil
}

func applyRegistryFilter(query *gorm.DB, filter document.RegistryFilter) *gorm.DB {
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.HeaderID != nil {
		query = query.Where("header_id = ?", *filter.HeaderID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	return query
}

func toEntries(rows []models.TransactionRegistryModel) []document.RegistryEntry {
	entries := make([]document.RegistryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries
}
