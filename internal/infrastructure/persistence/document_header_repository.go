package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHeaderRepository implements document.HeaderRepository using GORM
type GormHeaderRepository struct {
	db DBProvider
}

var _ document.HeaderRepository = (*GormHeaderRepository)(nil)

// NewGormHeaderRepository creates a new GormHeaderRepository
func NewGormHeaderRepository(db DBProvider) *GormHeaderRepository {
	return &GormHeaderRepository{db: db}
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds a document by ID with its lines
func (r *GormHeaderRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Header, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.DocumentHeaderModel
	if err := db.Preload("Lines", withLines).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByNumber finds a document by its number with its lines
func (r *GormHeaderRepository) FindByNumber(ctx context.Context, number string) (*document.Header, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.DocumentHeaderModel
	if err := db.Preload("Lines", withLines).Where("document_number = ?", number).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists documents without lines.
// Supported filters: status, definition_id, warehouse_id, third_party_id, plus From/To on date.
func (r *GormHeaderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Header, int64, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	query := db.Model(&models.DocumentHeaderModel{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "definition_id":
			query = query.Where("definition_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "third_party_id":
			query = query.Where("third_party_id = ?", value)
		}
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var rows []models.DocumentHeaderModel
	if err := query.Order(orderClause(filter.OrderBy, filter.OrderDir, DocumentSortFields, "created_at")).
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	headers := make([]document.Header, len(rows))
	for i := range rows {
		headers[i] = *rows[i].ToDomain()
	}
	return headers, total, nil
}

// Create inserts the header and its lines
func (r *GormHeaderRepository) Create(ctx context.Context, h *document.Header) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return translate(db.Create(models.DocumentHeaderModelFromDomain(h)).Error)
}

// SaveWithLock updates the header with a version check. Lines are immutable once
// written, so existing ones are skipped and new ones inserted.
func (r *GormHeaderRepository) SaveWithLock(ctx context.Context, h *document.Header) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	m := models.DocumentHeaderModelFromDomain(h)
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DocumentHeaderModel{}).
			Where("id = ? AND version = ?", h.ID, h.Version).
			Updates(map[string]any{
				"status":         m.Status,
				"total_amount":   m.TotalAmount,
				"total_tax":      m.TotalTax,
				"total_discount": m.TotalDiscount,
				"activated_at":   m.ActivatedAt,
				"cancelled_at":   m.CancelledAt,
				"cancel_reason":  m.CancelReason,
				"version":        h.Version + 1,
				"updated_at":     h.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.DocumentHeaderModel{}).Where("id = ?", h.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		if len(m.Lines) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&m.Lines).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.IncrementVersion()
	return nil
}
