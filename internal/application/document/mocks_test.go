package document

import (
	"context"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDefinitionRepository is a mock implementation of document.DefinitionRepository
type MockDefinitionRepository struct {
	mock.Mock
}

func (m *MockDefinitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Definition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Definition), args.Error(1)
}

func (m *MockDefinitionRepository) FindByCode(ctx context.Context, code string) (*document.Definition, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Definition), args.Error(1)
}

func (m *MockDefinitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Definition, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]document.Definition), args.Get(1).(int64), args.Error(2)
}

func (m *MockDefinitionRepository) Create(ctx context.Context, def *document.Definition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockDefinitionRepository) SaveWithLock(ctx context.Context, def *document.Definition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockDefinitionRepository) NextNumber(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockHeaderRepository is a mock implementation of document.HeaderRepository
type MockHeaderRepository struct {
	mock.Mock
}

func (m *MockHeaderRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Header, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Header), args.Error(1)
}

func (m *MockHeaderRepository) FindByNumber(ctx context.Context, number string) (*document.Header, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Header), args.Error(1)
}

func (m *MockHeaderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Header, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]document.Header), args.Get(1).(int64), args.Error(2)
}

func (m *MockHeaderRepository) Create(ctx context.Context, h *document.Header) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHeaderRepository) SaveWithLock(ctx context.Context, h *document.Header) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

// MockRegistryRepository is a mock implementation of document.RegistryRepository
type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) Append(ctx context.Context, entries []document.RegistryEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockRegistryRepository) DeleteByHeader(ctx context.Context, headerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, headerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistryRepository) FindByHeader(ctx context.Context, headerID uuid.UUID) ([]document.RegistryEntry, error) {
	args := m.Called(ctx, headerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.RegistryEntry), args.Error(1)
}

func (m *MockRegistryRepository) Find(ctx context.Context, filter document.RegistryFilter, page shared.Filter) ([]document.RegistryEntry, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]document.RegistryEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegistryRepository) Summarize(ctx context.Context, filter document.RegistryFilter) ([]document.RegistryTotal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.RegistryTotal), args.Error(1)
}

// MockNumberIssuer is a mock implementation of NumberIssuer
type MockNumberIssuer struct {
	mock.Mock
}

func (m *MockNumberIssuer) IssueNumber(ctx context.Context, definitionID uuid.UUID) (string, error) {
	args := m.Called(ctx, definitionID)
	return args.String(0), args.Error(1)
}

// MockLocker is a mock implementation of Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
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

// passthroughUnitOfWork runs fn directly and reports its error, as a transaction would
type passthroughUnitOfWork struct {
	calls int
}

func (u *passthroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.calls++
	return fn(ctx)
}
