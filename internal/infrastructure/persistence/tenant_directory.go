package persistence

import (
	"context"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharedDBProvider yields the handle of the public namespace
type SharedDBProvider interface {
	SharedDB(ctx context.Context) (*gorm.DB, error)
}

// TenantEntry is one provisioned tenant
type TenantEntry struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	Namespace     string    `json:"namespace"`
	ProvisionedAt time.Time `json:"provisioned_at"`
}

// GormTenantDirectory records which tenant namespaces have been provisioned
type GormTenantDirectory struct {
	db SharedDBProvider
}

// NewGormTenantDirectory creates a new GormTenantDirectory
func NewGormTenantDirectory(db SharedDBProvider) *GormTenantDirectory {
	return &GormTenantDirectory{db: db}
}

// Register records a provisioned namespace. Re-provisioning keeps the first timestamp.
func (d *GormTenantDirectory) Register(ctx context.Context, tenantID uuid.UUID, namespace string) error {
	db, err := d.db.SharedDB(ctx)
	if err != nil {
		return err
	}
	row := models.TenantDirectoryModel{TenantID: tenantID, Namespace: namespace, ProvisionedAt: time.Now()}
	return translate(db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error)
}

// List returns every provisioned tenant ordered by provisioning time
func (d *GormTenantDirectory) List(ctx context.Context) ([]TenantEntry, error) {
	db, err := d.db.SharedDB(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.TenantDirectoryModel
	if err := db.Order("provisioned_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]TenantEntry, len(rows))
	for i, row := range rows {
		entries[i] = TenantEntry(row)
	}
	return entries, nil
}

// Exists reports whether a tenant has been provisioned
func (d *GormTenantDirectory) Exists(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	db, err := d.db.SharedDB(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&models.TenantDirectoryModel{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
