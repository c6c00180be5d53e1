package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"
)

// TransactionRegistryModel is an append-only ledger row
type TransactionRegistryModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primaryKey"`
	HeaderID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	LineID          uuid.UUID                `gorm:"type:uuid;not null"`
	ItemID          *uuid.UUID               `gorm:"type:uuid;index"`
	Quantity        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Value           decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Type            document.TransactionType `gorm:"type:varchar(20);not null;index"`
	TransactionDate time.Time                `gorm:"not null;index"`
	WarehouseID     *uuid.UUID               `gorm:"type:uuid;index"`
	CreatedAt       time.Time                `gorm:"not null"`
}

// TableName resolves the table inside the current namespace
func (TransactionRegistryModel) TableName(namer schema.Namer) string {
	return namer.TableName("TransactionRegistry")
}

// ToDomain converts the persistence model to a domain entry
func (m *TransactionRegistryModel) ToDomain() document.RegistryEntry {
	return document.RegistryEntry{
		ID:              m.ID,
		HeaderID:        m.HeaderID,
		LineID:          m.LineID,
		ItemID:          m.ItemID,
		Quantity:        m.Quantity,
		Value:           m.Value,
		Type:            m.Type,
		TransactionDate: m.TransactionDate,
		WarehouseID:     m.WarehouseID,
		CreatedAt:       m.CreatedAt,
	}
}

// TransactionRegistryModelFromDomain creates a persistence model from a domain entry
func TransactionRegistryModelFromDomain(e document.RegistryEntry) TransactionRegistryModel {
	return TransactionRegistryModel{
		ID:              e.ID,
		HeaderID:        e.HeaderID,
		LineID:          e.LineID,
		ItemID:          e.ItemID,
		Quantity:        e.Quantity,
		Value:           e.Value,
		Type:            e.Type,
		TransactionDate: e.TransactionDate,
		WarehouseID:     e.WarehouseID,
		CreatedAt:       e.CreatedAt,
	}
}
