package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unclosedStatuses are the session states that hold a register or cashier
var unclosedStatuses = []cash.SessionStatus{cash.SessionOpen, cash.SessionClosing}

// GormRegisterRepository implements cash.RegisterRepository using GORM
type GormRegisterRepository struct {
	db DBProvider
}

var _ cash.RegisterRepository = (*GormRegisterRepository)(nil)

// NewGormRegisterRepository creates a new GormRegisterRepository
func NewGormRegisterRepository(db DBProvider) *GormRegisterRepository {
	return &GormRegisterRepository{db: db}
}

// FindByID finds a register by ID
func (r *GormRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Register, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.CashRegisterModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// LockByID finds a register and holds its row lock until the surrounding transaction ends
func (r *GormRegisterRepository) LockByID(ctx context.Context, id uuid.UUID) (*cash.Register, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.CashRegisterModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists all registers ordered by code
func (r *GormRegisterRepository) FindAll(ctx context.Context) ([]cash.Register, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var rows []models.CashRegisterModel
	if err := db.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	registers := make([]cash.Register, len(rows))
	for i := range rows {
		registers[i] = *rows[i].ToDomain()
	}
	return registers, nil
}

// Create inserts a register
func (r *GormRegisterRepository) Create(ctx context.Context, reg *cash.Register) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return translate(db.Create(models.CashRegisterModelFromDomain(reg)).Error)
}

// GormCashierRepository implements cash.CashierRepository using GORM
type GormCashierRepository struct {
	db DBProvider
}

var _ cash.CashierRepository = (*GormCashierRepository)(nil)

// NewGormCashierRepository creates a new GormCashierRepository
func NewGormCashierRepository(db DBProvider) *GormCashierRepository {
	return &GormCashierRepository{db: db}
}

// FindByID finds a cashier by ID
func (r *GormCashierRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Cashier, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.CashierModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByUserID finds the cashier record of a platform user
func (r *GormCashierRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cash.Cashier, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.CashierModel
	if err := db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Create inserts a cashier
func (r *GormCashierRepository) Create(ctx context.Context, c *cash.Cashier) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return translate(db.Create(models.CashierModelFromDomain(c)).Error)
}

// GormSessionRepository implements cash.SessionRepository using GORM
type GormSessionRepository struct {
	db DBProvider
}

var _ cash.SessionRepository = (*GormSessionRepository)(nil)

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db DBProvider) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func withMovements(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC, id ASC")
}

// FindByID finds a session with its movements
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Session, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindUnclosedByRegister finds the OPEN or CLOSING session of a register
func (r *GormSessionRepository) FindUnclosedByRegister(ctx context.Context, registerID uuid.UUID) (*cash.Session, error) {
	return r.findOne(ctx, "register_id = ? AND status IN ?", registerID, unclosedStatuses)
}

// FindUnclosedByCashier finds the OPEN or CLOSING session of a cashier
func (r *GormSessionRepository) FindUnclosedByCashier(ctx context.Context, cashierID uuid.UUID) (*cash.Session, error) {
	return r.findOne(ctx, "cashier_id = ? AND status IN ?", cashierID, unclosedStatuses)
}

func (r *GormSessionRepository) findOne(ctx context.Context, query string, args ...any) (*cash.Session, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.CashSessionModel
	if err := db.Preload("Movements", withMovements).Where(query, args...).
		Order("open_date DESC").First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists sessions without movements.
// Supported filters: status, register_id, cashier_id, plus From/To on open_date.
func (r *GormSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cash.Session, int64, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, 0, err
	}

	query := db.Model(&models.CashSessionModel{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "register_id":
			query = query.Where("register_id = ?", value)
		case "cashier_id":
			query = query.Where("cashier_id = ?", value)
		}
	}
	if filter.From != nil {
		query = query.Where("open_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("open_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var rows []models.CashSessionModel
	if err := query.Order(orderClause(filter.OrderBy, filter.OrderDir, SessionSortFields, "open_date")).
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]cash.Session, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions, total, nil
}

// Create inserts a new session and any movements it already carries
func (r *GormSessionRepository) Create(ctx context.Context, s *cash.Session) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return translate(db.Create(models.CashSessionModelFromDomain(s)).Error)
}

// SaveWithLock updates the session with a version check and appends movements
// not yet stored. Movements are immutable, so conflicts on their id are skipped.
func (r *GormSessionRepository) SaveWithLock(ctx context.Context, s *cash.Session) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	m := models.CashSessionModelFromDomain(s)
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CashSessionModel{}).
			Where("id = ? AND version = ?", s.ID, s.Version).
			Updates(map[string]any{
				"status":             m.Status,
				"close_date":         m.CloseDate,
				"declared_balance":   m.DeclaredBalance,
				"calculated_balance": m.CalculatedBalance,
				"variance":           m.Variance,
				"variance_level":     m.VarianceLevel,
				"version":            s.Version + 1,
				"updated_at":         s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.CashSessionModel{}).Where("id = ?", s.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		if len(m.Movements) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&m.Movements).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.IncrementVersion()
	return nil
}
