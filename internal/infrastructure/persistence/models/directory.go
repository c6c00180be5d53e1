package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/schema"
)

// TenantDirectoryModel records provisioned tenant namespaces. It lives in the
// public namespace.
type TenantDirectoryModel struct {
	TenantID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Namespace     string    `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProvisionedAt time.Time `gorm:"not null"`
}

// TableName resolves the table inside the public namespace
func (TenantDirectoryModel) TableName(namer schema.Namer) string {
	return namer.TableName("TenantDirectory")
}
