package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// MigrateNamespace creates or updates the tables of one namespace. The public
// namespace only holds the tenant directory.
func MigrateNamespace(ctx context.Context, db *gorm.DB, namespace string) error {
	set := models.TenantModels()
	if namespace == tenancy.PublicNamespace {
		set = models.SharedModels()
	}
	if err := db.WithContext(ctx).AutoMigrate(set...); err != nil {
		return fmt.Errorf("auto-migrate %s: %w", namespace, err)
	}
	return nil
}
