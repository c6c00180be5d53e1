package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateModel provides common persistence fields for aggregate roots.
// Version backs optimistic locking.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot converts back to the domain base
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.RestoreBaseAggregateRoot(m.ID, m.CreatedAt, m.UpdatedAt, m.Version)
}

// TenantModels returns the models migrated into every tenant namespace
func TenantModels() []any {
	return []any{
		&DocumentDefinitionModel{},
		&DocumentHeaderModel{},
		&DocumentLineModel{},
		&TransactionRegistryModel{},
		&CashRegisterModel{},
		&CashierModel{},
		&CashSessionModel{},
		&CashMovementModel{},
	}
}

// SharedModels returns the models migrated into the public namespace
func SharedModels() []any {
	return []any{&TenantDirectoryModel{}}
}
