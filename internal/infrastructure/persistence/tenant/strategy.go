package tenant

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erp/ledgercore/internal/domain/tenancy"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Strategy decides how a namespace maps onto the physical database
type Strategy string

const (
	// StrategySchema places each namespace in its own PostgreSQL schema
	StrategySchema Strategy = "schema"
	// StrategyPrefix prefixes every table with the namespace; used with SQLite
	StrategyPrefix Strategy = "prefix"
)

// IsValid checks if the strategy is known
func (s Strategy) IsValid() bool {
	return s == StrategySchema || s == StrategyPrefix
}

// Namer returns the naming strategy that confines tables to namespace
func (s Strategy) Namer(namespace string) schema.Namer {
	switch s {
	case StrategySchema:
		return schema.NamingStrategy{TablePrefix: namespace + "."}
	default:
		return schema.NamingStrategy{TablePrefix: namespace + "_"}
	}
}

// Prepare creates the physical container of a namespace when the strategy needs one
func (s Strategy) Prepare(ctx context.Context, db *gorm.DB, namespace string) error {
	if s != StrategySchema || namespace == tenancy.PublicNamespace {
		return nil
	}
	// Interpolated into DDL
	if !tenancy.IsTenantNamespace(namespace) {
		return fmt.Errorf("refusing to create schema for namespace %q", namespace)
	}
	return db.WithContext(ctx).Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", namespace)).Error
}

// DialectorFactory builds a dialector over an existing connection pool so every
// compiled model shares one pool
type DialectorFactory func(pool *sql.DB) gorm.Dialector

// PostgresDialector shares pool with a PostgreSQL dialector
func PostgresDialector(pool *sql.DB) gorm.Dialector {
	return postgres.New(postgres.Config{Conn: pool})
}

// SQLiteDialector shares pool with a SQLite dialector
func SQLiteDialector(pool *sql.DB) gorm.Dialector {
	return &sqlite.Dialector{Conn: pool}
}
