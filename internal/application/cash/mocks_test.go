package cash

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRegisterRepository is a mock implementation of cash.RegisterRepository
type MockRegisterRepository struct {
	mock.Mock
}

func (m *MockRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Register, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Register), args.Error(1)
}

func (m *MockRegisterRepository) LockByID(ctx context.Context, id uuid.UUID) (*cash.Register, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Register), args.Error(1)
}

func (m *MockRegisterRepository) FindAll(ctx context.Context) ([]cash.Register, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cash.Register), args.Error(1)
}

func (m *MockRegisterRepository) Create(ctx context.Context, r *cash.Register) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockCashierRepository is a mock implementation of cash.CashierRepository
type MockCashierRepository struct {
	mock.Mock
}

func (m *MockCashierRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Cashier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Cashier), args.Error(1)
}

func (m *MockCashierRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cash.Cashier, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Cashier), args.Error(1)
}

func (m *MockCashierRepository) Create(ctx context.Context, c *cash.Cashier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of cash.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Session), args.Error(1)
}

func (m *MockSessionRepository) FindUnclosedByRegister(ctx context.Context, registerID uuid.UUID) (*cash.Session, error) {
	args := m.Called(ctx, registerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Session), args.Error(1)
}

func (m *MockSessionRepository) FindUnclosedByCashier(ctx context.Context, cashierID uuid.UUID) (*cash.Session, error) {
	args := m.Called(ctx, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cash.Session), args.Error(1)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cash.Session, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]cash.Session), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) Create(ctx context.Context, s *cash.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) SaveWithLock(ctx context.Context, s *cash.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
