package cash

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterRepository defines the interface for register persistence
type RegisterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Register, error)
	// LockByID finds a register and locks it for the rest of the transaction
	LockByID(ctx context.Context, id uuid.UUID) (*Register, error)
	FindAll(ctx context.Context) ([]Register, error)
	// Create inserts a register; a duplicate code yields shared.ErrAlreadyExists
	Create(ctx context.Context, r *Register) error
}

// CashierRepository defines the interface for cashier persistence
type CashierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cashier, error)
	// FindByUserID finds the cashier record of a platform user
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cashier, error)
	// Create inserts a cashier; a user can have only one cashier record
	Create(ctx context.Context, c *Cashier) error
}

// SessionRepository defines the interface for cash session persistence
type SessionRepository interface {
	// FindByID finds a session with its movements
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindUnclosedByRegister finds the OPEN or CLOSING session of a register
	FindUnclosedByRegister(ctx context.Context, registerID uuid.UUID) (*Session, error)

	// FindUnclosedByCashier finds the OPEN or CLOSING session of a cashier
	FindUnclosedByCashier(ctx context.Context, cashierID uuid.UUID) (*Session, error)

	// FindAll lists sessions without movements
	FindAll(ctx context.Context, filter shared.Filter) ([]Session, int64, error)

	// Create inserts a new session
	Create(ctx context.Context, s *Session) error

	// SaveWithLock updates the session with a version check and appends new movements
	SaveWithLock(ctx context.Context, s *Session) error
}
