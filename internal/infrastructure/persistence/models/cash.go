package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"
)

// CashRegisterModel is the persistence model for registers
type CashRegisterModel struct {
	AggregateModel
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(100);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName resolves the table inside the current namespace
func (CashRegisterModel) TableName(namer schema.Namer) string {
	return namer.TableName("CashRegister")
}

// ToDomain converts the persistence model to a domain entity
func (m *CashRegisterModel) ToDomain() *cash.Register {
	return cash.RestoreRegister(m.ToDomainAggregateRoot(), m.Code, m.Name, m.IsActive)
}

// CashRegisterModelFromDomain creates a persistence model from a domain entity
func CashRegisterModelFromDomain(r *cash.Register) *CashRegisterModel {
	m := &CashRegisterModel{Code: r.Code, Name: r.Name, IsActive: r.IsActive}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// CashierModel is the persistence model for cashiers
type CashierModel struct {
	AggregateModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Name     string    `gorm:"type:varchar(100);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName resolves the table inside the current namespace
func (CashierModel) TableName(namer schema.Namer) string {
	return namer.TableName("Cashier")
}

// ToDomain converts the persistence model to a domain entity
func (m *CashierModel) ToDomain() *cash.Cashier {
	return cash.RestoreCashier(m.ToDomainAggregateRoot(), m.UserID, m.Name, m.IsActive)
}

// CashierModelFromDomain creates a persistence model from a domain entity
func CashierModelFromDomain(c *cash.Cashier) *CashierModel {
	m := &CashierModel{UserID: c.UserID, Name: c.Name, IsActive: c.IsActive}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CashSessionModel is the persistence model for cash sessions
type CashSessionModel struct {
	AggregateModel
	RegisterID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	CashierID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	OpenDate          time.Time           `gorm:"not null"`
	CloseDate         *time.Time          `gorm:"index"`
	OpeningBalance    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	DeclaredBalance   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	CalculatedBalance decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Status            cash.SessionStatus  `gorm:"type:varchar(20);not null;index"`
	Variance          decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	VarianceLevel     cash.VarianceLevel  `gorm:"type:varchar(20)"`
	Movements         []CashMovementModel `gorm:"foreignKey:SessionID;references:ID"`
}

// TableName resolves the table inside the current namespace
func (CashSessionModel) TableName(namer schema.Namer) string {
	return namer.TableName("CashSession")
}

// ToDomain converts the persistence model to a domain aggregate
func (m *CashSessionModel) ToDomain() *cash.Session {
	movements := make([]cash.Movement, len(m.Movements))
	for i := range m.Movements {
		movements[i] = m.Movements[i].ToDomain()
	}
	s := cash.RestoreSession(m.ToDomainAggregateRoot(), m.RegisterID, m.CashierID, m.OpenDate, m.CloseDate,
		m.OpeningBalance, nullToPtr(m.DeclaredBalance), m.Status, nullToPtr(m.Variance), m.VarianceLevel, movements)
	// Listings load sessions without movements; trust the stored balance then.
	if len(m.Movements) == 0 {
		s.CalculatedBalance = m.CalculatedBalance
	}
	return s
}

// CashSessionModelFromDomain creates a persistence model, movements included
func CashSessionModelFromDomain(s *cash.Session) *CashSessionModel {
	m := &CashSessionModel{
		RegisterID:        s.RegisterID,
		CashierID:         s.CashierID,
		OpenDate:          s.OpenDate,
		CloseDate:         s.CloseDate,
		OpeningBalance:    s.OpeningBalance,
		DeclaredBalance:   ptrToNull(s.DeclaredBalance),
		CalculatedBalance: s.CalculatedBalance,
		Status:            s.Status,
		Variance:          ptrToNull(s.Variance),
		VarianceLevel:     s.VarianceLevel,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for _, mv := range s.Movements() {
		m.Movements = append(m.Movements, CashMovementModelFromDomain(mv))
	}
	return m
}

// CashMovementModel is the persistence model for immutable cash movements
type CashMovementModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Concept   string          `gorm:"type:varchar(200);not null"`
	IsIncome  bool            `gorm:"not null"`
	Date      time.Time       `gorm:"not null;index"`
}

// TableName resolves the table inside the current namespace
func (CashMovementModel) TableName(namer schema.Namer) string {
	return namer.TableName("CashMovement")
}

// ToDomain converts the persistence model to a domain movement
func (m *CashMovementModel) ToDomain() cash.Movement {
	return cash.Movement{
		ID:        m.ID,
		SessionID: m.SessionID,
		Amount:    m.Amount,
		Concept:   m.Concept,
		IsIncome:  m.IsIncome,
		Date:      m.Date,
	}
}

// CashMovementModelFromDomain creates a persistence model from a domain movement
func CashMovementModelFromDomain(mv cash.Movement) CashMovementModel {
	return CashMovementModel{
		ID:        mv.ID,
		SessionID: mv.SessionID,
		Amount:    mv.Amount,
		Concept:   mv.Concept,
		IsIncome:  mv.IsIncome,
		Date:      mv.Date,
	}
}

func nullToPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func ptrToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
