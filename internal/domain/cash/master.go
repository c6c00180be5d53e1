package cash

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	maxRegisterCodeLength = 20
	maxNameLength         = 100
)

// Register is a physical or logical cash drawer
type Register struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	IsActive bool
}

// NewRegister creates an active register
func NewRegister(code, name string) (*Register, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || len(code) > maxRegisterCodeLength {
		return nil, shared.NewDomainError("INVALID_REGISTER_CODE", "Register code must be 1-20 characters")
	}
	if name == "" || len(name) > maxNameLength {
		return nil, shared.NewDomainError("INVALID_REGISTER_NAME", "Register name must be 1-100 characters")
	}
	return &Register{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		IsActive:          true,
	}, nil
}

// Deactivate takes the register out of service
func (r *Register) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
}

// RestoreRegister rebuilds a register from persisted state
func RestoreRegister(base shared.BaseAggregateRoot, code, name string, isActive bool) *Register {
	return &Register{BaseAggregateRoot: base, Code: code, Name: name, IsActive: isActive}
}

// Cashier is a user authorized to operate registers
type Cashier struct {
	shared.BaseAggregateRoot
	UserID   uuid.UUID
	Name     string
	IsActive bool
}

// NewCashier creates an active cashier bound to a platform user
func NewCashier(userID uuid.UUID, name string) (*Cashier, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cashier user ID cannot be empty")
	}
	if name == "" || len(name) > maxNameLength {
		return nil, shared.NewDomainError("INVALID_CASHIER_NAME", "Cashier name must be 1-100 characters")
	}
	return &Cashier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Name:              name,
		IsActive:          true,
	}, nil
}

// Deactivate revokes the cashier's access to registers
func (c *Cashier) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

// RestoreCashier rebuilds a cashier from persisted state
func RestoreCashier(base shared.BaseAggregateRoot, userID uuid.UUID, name string, isActive bool) *Cashier {
	return &Cashier{BaseAggregateRoot: base, UserID: userID, Name: name, IsActive: isActive}
}
