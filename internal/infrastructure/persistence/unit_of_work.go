package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledgercore/internal/domain/shared"
	"gorm.io/gorm"
)

// DBProvider yields the namespace-confined handle of the tenant bound to ctx
type DBProvider interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// txKey is the context key for the active transaction
type txKey struct{}

// GormUnitOfWork runs a function inside one transaction of the tenant's namespace.
// The transaction travels in the context; repositories given that context join it.
type GormUnitOfWork struct {
	provider DBProvider
}

var _ shared.UnitOfWork = (*GormUnitOfWork)(nil)

// NewGormUnitOfWork creates a unit of work over provider
func NewGormUnitOfWork(provider DBProvider) *GormUnitOfWork {
	return &GormUnitOfWork{provider: provider}
}

// Do runs fn in a transaction. A nested Do joins the outer transaction.
// Any error returned by fn, or a context timeout, rolls everything back.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	db, err := u.provider.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// InTransaction reports whether ctx carries an active transaction
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// conn returns the active transaction of ctx, or a fresh handle from provider
func conn(ctx context.Context, provider DBProvider) (*gorm.DB, error) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx), nil
	}
	return provider.DB(ctx)
}

// translate maps gorm errors onto domain sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}
