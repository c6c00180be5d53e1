package cash

import (
	"context"
	"testing"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	registers *MockRegisterRepository
	cashiers  *MockCashierRepository
	sessions  *MockSessionRepository
	publisher *MockEventPublisher
	svc       *SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		registers: new(MockRegisterRepository),
		cashiers:  new(MockCashierRepository),
		sessions:  new(MockSessionRepository),
		publisher: new(MockEventPublisher),
	}
	f.svc = NewSessionService(f.registers, f.cashiers, f.sessions, passthroughUnitOfWork{}, cash.DefaultVariancePolicy())
	f.svc.SetEventPublisher(f.publisher)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func tenantContext(t *testing.T) context.Context {
	t.Helper()
	ctx, err := tenancy.Bind(context.Background(), uuid.New())
	require.NoError(t, err)
	return ctx
}

func newCashier(t *testing.T) *cash.Cashier {
	t.Helper()
	c, err := cash.NewCashier(uuid.New(), "Ana")
	require.NoError(t, err)
	return c
}

func newRegister(t *testing.T) *cash.Register {
	t.Helper()
	r, err := cash.NewRegister("POS-1", "Front desk")
	require.NoError(t, err)
	return r
}

func openSession(t *testing.T, reg *cash.Register, c *cash.Cashier, opening int64) *cash.Session {
	t.Helper()
	s, err := cash.OpenSession(reg.ID, c.ID, decimal.NewFromInt(opening))
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestSessionService_Open(t *testing.T) {
	t.Run("opens on a free register", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)
		f.sessions.On("FindUnclosedByRegister", mock.Anything, reg.ID).Return(nil, shared.ErrNotFound)
		f.sessions.On("FindUnclosedByCashier", mock.Anything, cashier.ID).Return(nil, shared.ErrNotFound)
		f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*cash.Session")).Return(nil)

		resp, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{
			RegisterID:     reg.ID,
			OpeningBalance: decimal.NewFromInt(100),
		})

		require.NoError(t, err)
		assert.Equal(t, "OPEN", resp.Status)
		assert.Equal(t, cashier.ID, resp.CashierID)
		assert.Nil(t, resp.CalculatedBalance, "balance is hidden while open")
		f.sessions.AssertExpectations(t)
	})

	t.Run("register already in use", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)
		f.sessions.On("FindUnclosedByRegister", mock.Anything, reg.ID).Return(openSession(t, reg, newCashier(t), 0), nil)

		_, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{RegisterID: reg.ID})

		assert.ErrorIs(t, err, cash.ErrSessionAlreadyOpen)
		f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cashier already has a session elsewhere", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)
		f.sessions.On("FindUnclosedByRegister", mock.Anything, reg.ID).Return(nil, shared.ErrNotFound)
		f.sessions.On("FindUnclosedByCashier", mock.Anything, cashier.ID).Return(openSession(t, newRegister(t), cashier, 0), nil)

		_, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{RegisterID: reg.ID})

		assert.ErrorIs(t, err, cash.ErrSessionAlreadyOpen)
		assert.True(t, shared.IsCategory(err, shared.CategoryConflict))
	})

	t.Run("inactive register", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		reg.Deactivate()
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)

		_, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{RegisterID: reg.ID})

		assert.True(t, shared.IsCategory(err, shared.CategoryInvalidState))
	})

	t.Run("negative opening balance", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)
		f.sessions.On("FindUnclosedByRegister", mock.Anything, reg.ID).Return(nil, shared.ErrNotFound)
		f.sessions.On("FindUnclosedByCashier", mock.Anything, cashier.ID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{
			RegisterID:     reg.ID,
			OpeningBalance: decimal.NewFromInt(-1),
		})

		assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
	})

	t.Run("lookup failures are not mistaken for a free register", func(t *testing.T) {
		f := newSessionFixture()
		reg, cashier := newRegister(t), newCashier(t)
		f.registers.On("LockByID", mock.Anything, reg.ID).Return(reg, nil)
		f.sessions.On("FindUnclosedByRegister", mock.Anything, reg.ID).Return(nil, assert.AnError)

		_, err := f.svc.Open(tenantContext(t), cashier, OpenSessionRequest{RegisterID: reg.ID})

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestSessionService_BlindCountFlow(t *testing.T) {
	f := newSessionFixture()
	reg, cashier := newRegister(t), newCashier(t)
	sess := openSession(t, reg, cashier, 100)
	ctx := tenantContext(t)

	f.sessions.On("FindByID", mock.Anything, sess.ID).Return(sess, nil)
	f.sessions.On("SaveWithLock", mock.Anything, sess).Return(nil)

	_, err := f.svc.AddMovement(ctx, cashier, sess.ID, AddMovementRequest{Amount: decimal.NewFromInt(50), Concept: "sale", IsIncome: true})
	require.NoError(t, err)
	resp, err := f.svc.AddMovement(ctx, cashier, sess.ID, AddMovementRequest{Amount: decimal.NewFromInt(20), Concept: "refund"})
	require.NoError(t, err)
	require.Len(t, resp.Movements, 2)
	assert.Nil(t, resp.CalculatedBalance)
	assert.Nil(t, resp.Movements[0].Amount, "movement amounts would reveal the balance")

	resp, err = f.svc.RequestClose(ctx, cashier, sess.ID, RequestCloseRequest{DeclaredBalance: decimal.NewFromInt(125)})
	require.NoError(t, err)
	assert.Equal(t, "CLOSING", resp.Status)
	assert.Nil(t, resp.CalculatedBalance, "count stays blind until confirmed")
	assert.Nil(t, resp.Variance)

	_, err = f.svc.Reconciliation(ctx, sess.ID)
	assert.True(t, shared.IsCategory(err, shared.CategoryInvalidState))

	resp, err = f.svc.ConfirmClose(ctx, cashier, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", resp.Status)
	require.NotNil(t, resp.CalculatedBalance)
	assert.True(t, decimal.NewFromInt(130).Equal(*resp.CalculatedBalance))
	require.NotNil(t, resp.Variance)
	assert.True(t, decimal.NewFromInt(-5).Equal(*resp.Variance))
	assert.Equal(t, "WARNING", resp.VarianceLevel)
	assert.NotNil(t, resp.CloseDate)

	rec, err := f.svc.Reconciliation(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(rec.TotalIncome))
	assert.True(t, decimal.NewFromInt(20).Equal(rec.TotalOutflow))
	assert.Equal(t, 1, rec.IncomeCount)
	assert.Equal(t, 1, rec.OutflowCount)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == cash.EventTypeSessionClosed
	}))
}

func TestSessionService_Ownership(t *testing.T) {
	f := newSessionFixture()
	reg, owner := newRegister(t), newCashier(t)
	sess := openSession(t, reg, owner, 0)
	f.sessions.On("FindByID", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.AddMovement(tenantContext(t), newCashier(t), sess.ID, AddMovementRequest{Amount: decimal.NewFromInt(1), Concept: "x", IsIncome: true})

	assert.True(t, shared.IsCategory(err, shared.CategoryAccess))
	f.sessions.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSessionService_ConfirmWithoutRequest(t *testing.T) {
	f := newSessionFixture()
	reg, cashier := newRegister(t), newCashier(t)
	sess := openSession(t, reg, cashier, 10)
	f.sessions.On("FindByID", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.ConfirmClose(tenantContext(t), cashier, sess.ID)

	assert.True(t, shared.IsCategory(err, shared.CategoryInvalidState))
	assert.Equal(t, cash.SessionOpen, sess.Status)
}

func TestSessionService_List(t *testing.T) {
	f := newSessionFixture()
	reg, cashier := newRegister(t), newCashier(t)
	sess := openSession(t, reg, cashier, 10)
	f.sessions.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["status"] == "OPEN" && filter.Filters["register_id"] == reg.ID && filter.OrderBy == "open_date"
	})).Return([]cash.Session{*sess}, int64(1), nil)

	items, total, err := f.svc.List(tenantContext(t), SessionListFilter{Status: "OPEN", RegisterID: &reg.ID})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CalculatedBalance)

	_, _, err = f.svc.List(tenantContext(t), SessionListFilter{Status: "PAUSED"})
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
}

func TestSessionService_MasterData(t *testing.T) {
	f := newSessionFixture()
	f.registers.On("Create", mock.Anything, mock.AnythingOfType("*cash.Register")).Return(nil)
	f.cashiers.On("Create", mock.Anything, mock.AnythingOfType("*cash.Cashier")).Return(shared.ErrAlreadyExists)

	reg, err := f.svc.CreateRegister(tenantContext(t), CreateRegisterRequest{Code: "pos-2", Name: "Back"})
	require.NoError(t, err)
	assert.Equal(t, "POS-2", reg.Code)

	_, err = f.svc.CreateCashier(tenantContext(t), CreateCashierRequest{UserID: uuid.New(), Name: "Luis"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.svc.CreateCashier(tenantContext(t), CreateCashierRequest{Name: "No user"})
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
}
