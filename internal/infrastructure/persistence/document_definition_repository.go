package persistence

import (
	"context"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDefinitionRepository implements document.DefinitionRepository using GORM
type GormDefinitionRepository struct {
	db DBProvider
}

var _ document.DefinitionRepository = (*GormDefinitionRepository)(nil)

// NewGormDefinitionRepository creates a new GormDefinitionRepository
func NewGormDefinitionRepository(db DBProvider) *GormDefinitionRepository {
	return &GormDefinitionRepository{db: db}
}

// FindByID finds a definition by ID
func (r *GormDefinitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Definition, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.DocumentDefinitionModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByCode finds a definition by its code
func (r *GormDefinitionRepository) FindByCode(ctx context.Context, code string) (*document.Definition, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.DocumentDefinitionModel
	if err := db.Where("code = ?", code).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists definitions. Supported filters: module, is_active.
func (r *GormDefinitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Definition, int64, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	query := db.Model(&models.DocumentDefinitionModel{})
	for key, value := range filter.Filters {
		switch key {
		case "module":
			query = query.Where("module = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var rows []models.DocumentDefinitionModel
	if err := query.Order(orderClause(filter.OrderBy, filter.OrderDir, DefinitionSortFields, "code")).
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	defs := make([]document.Definition, len(rows))
	for i := range rows {
		defs[i] = *rows[i].ToDomain()
	}
	return defs, total, nil
}

// Create inserts a new definition
func (r *GormDefinitionRepository) Create(ctx context.Context, def *document.Definition) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return translate(db.Create(models.DocumentDefinitionModelFromDomain(def)).Error)
}

// SaveWithLock updates the mutable fields of a definition with a version check.
// The counter is left alone; only NextNumber moves it.
func (r *GormDefinitionRepository) SaveWithLock(ctx context.Context, def *document.Definition) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&models.DocumentDefinitionModel{}).
		Where("id = ? AND version = ?", def.ID, def.Version).
		Updates(map[string]any{
			"name":          def.Name,
			"prefix":        def.Prefix,
			"is_active":     def.IsActive,
			"configuration": models.DocumentDefinitionModelFromDomain(def).Configuration,
			"version":       def.Version + 1,
			"updated_at":    def.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.conflictOrMissing(db, def.ID)
	}
	def.IncrementVersion()
	return nil
}

// NextNumber issues the next number of a definition. The row is locked for the
// duration of the transaction and the counter is advanced with a conditional
// update, so a lost race surfaces as shared.ErrConcurrencyConflict rather than
// a duplicate number.
func (r *GormDefinitionRepository) NextNumber(ctx context.Context, id uuid.UUID) (string, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return "", err
	}

	var number string
	err = db.Transaction(func(tx *gorm.DB) error {
		var m models.DocumentDefinitionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&m).Error; err != nil {
			return translate(err)
		}

		def := m.ToDomain()
		issued, err := def.GenerateNextNumber()
		if err != nil {
			return err
		}

		result := tx.Model(&models.DocumentDefinitionModel{}).
			Where("id = ? AND next_number = ? AND version = ?", id, m.NextNumber, m.Version).
			Updates(map[string]any{
				"next_number": def.NextNumber,
				"version":     m.Version + 1,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		number = issued
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *GormDefinitionRepository) conflictOrMissing(db *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := db.Model(&models.DocumentDefinitionModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}
