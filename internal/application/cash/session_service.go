package cash

import (
	"context"
	"errors"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService handles cash registers, cashiers and the session lifecycle
type SessionService struct {
	registers      cash.RegisterRepository
	cashiers       cash.CashierRepository
	sessions       cash.SessionRepository
	uow            shared.UnitOfWork
	policy         cash.VariancePolicy
	metrics        *telemetry.LedgerMetrics
	eventPublisher shared.EventPublisher
}

// NewSessionService creates a new SessionService
func NewSessionService(
	registers cash.RegisterRepository,
	cashiers cash.CashierRepository,
	sessions cash.SessionRepository,
	uow shared.UnitOfWork,
	policy cash.VariancePolicy,
) *SessionService {
	return &SessionService{
		registers: registers,
		cashiers:  cashiers,
		sessions:  sessions,
		uow:       uow,
		policy:    policy,
	}
}

// SetLedgerMetrics sets the metrics recorder
func (s *SessionService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetEventPublisher sets the event publisher
func (s *SessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateRegister creates a cash register
func (s *SessionService) CreateRegister(ctx context.Context, req CreateRegisterRequest) (*RegisterResponse, error) {
	reg, err := cash.NewRegister(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.registers.Create(ctx, reg); err != nil {
		return nil, err
	}
	response := ToRegisterResponse(reg)
	return &response, nil
}

// ListRegisters lists all registers
func (s *SessionService) ListRegisters(ctx context.Context) ([]RegisterResponse, error) {
	registers, err := s.registers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]RegisterResponse, len(registers))
	for i := range registers {
		responses[i] = ToRegisterResponse(&registers[i])
	}
	return responses, nil
}

// CreateCashier authorizes a user to operate registers
func (s *SessionService) CreateCashier(ctx context.Context, req CreateCashierRequest) (*CashierResponse, error) {
	c, err := cash.NewCashier(req.UserID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.cashiers.Create(ctx, c); err != nil {
		return nil, err
	}
	response := ToCashierResponse(c)
	return &response, nil
}

// Open starts a session for cashier on a register. A register and a cashier
// each hold at most one session that is not CLOSED.
func (s *SessionService) Open(ctx context.Context, cashier *cash.Cashier, req OpenSessionRequest) (*SessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "open",
		telemetry.SpanAttrRegisterID, req.RegisterID.String(),
	)
	defer span.End()

	var session *cash.Session
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		reg, err := s.registers.LockByID(ctx, req.RegisterID)
		if err != nil {
			return err
		}
		if !reg.IsActive {
			return shared.NewInvalidStateError("Register is not active")
		}

		if err := s.ensureNoUnclosed(s.sessions.FindUnclosedByRegister(ctx, reg.ID)); err != nil {
			return err
		}
		if err := s.ensureNoUnclosed(s.sessions.FindUnclosedByCashier(ctx, cashier.ID)); err != nil {
			return err
		}

		sess, err := cash.OpenSession(reg.ID, cashier.ID, req.OpeningBalance)
		if err != nil {
			return err
		}
		if err := s.sessions.Create(ctx, sess); err != nil {
			return err
		}
		session = sess
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, session)
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, session.ID.String())
	logger.L(ctx).Info("cash session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("register_id", session.RegisterID.String()),
		zap.String("cashier_id", session.CashierID.String()),
		zap.String("opening_balance", session.OpeningBalance.String()),
	)

	response := ToSessionResponse(session)
	return &response, nil
}

func (s *SessionService) ensureNoUnclosed(existing *cash.Session, err error) error {
	switch {
	case err == nil && existing != nil:
		return cash.ErrSessionAlreadyOpen
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return err
	}
	return nil
}

// Get retrieves a session with its movements
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	sess, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(sess)
	return &response, nil
}

// List retrieves sessions with filtering and pagination
func (s *SessionService) List(ctx context.Context, filter SessionListFilter) ([]SessionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "open_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		From:     filter.From,
		To:       filter.To,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		status := cash.SessionStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown session status")
		}
		domainFilter.Filters["status"] = status.String()
	}
	if filter.RegisterID != nil {
		domainFilter.Filters["register_id"] = *filter.RegisterID
	}
	if filter.CashierID != nil {
		domainFilter.Filters["cashier_id"] = *filter.CashierID
	}

	sessions, total, err := s.sessions.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = toSessionListItem(&sessions[i])
	}
	return responses, total, nil
}

// AddMovement records a cash entry or exit on the cashier's own open session
func (s *SessionService) AddMovement(ctx context.Context, cashier *cash.Cashier, id uuid.UUID, req AddMovementRequest) (*SessionResponse, error) {
	sess, err := s.owned(ctx, cashier, id)
	if err != nil {
		return nil, err
	}
	m, err := sess.AddMovement(req.Amount, req.Concept, req.IsIncome)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, sess); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("cash movement recorded",
		zap.String("session_id", sess.ID.String()),
		zap.String("movement_id", m.ID.String()),
		zap.String("amount", m.Amount.String()),
		zap.Bool("is_income", m.IsIncome),
	)

	response := ToSessionResponse(sess)
	return &response, nil
}

// RequestClose records the cashier's blind count; the response still hides the calculated balance
func (s *SessionService) RequestClose(ctx context.Context, cashier *cash.Cashier, id uuid.UUID, req RequestCloseRequest) (*SessionResponse, error) {
	sess, err := s.owned(ctx, cashier, id)
	if err != nil {
		return nil, err
	}
	if err := sess.RequestClose(req.DeclaredBalance); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, sess); err != nil {
		return nil, err
	}
	s.publish(ctx, sess)

	logger.L(ctx).Info("cash session close requested",
		zap.String("session_id", sess.ID.String()),
		zap.String("declared_balance", req.DeclaredBalance.String()),
	)

	response := ToSessionResponse(sess)
	return &response, nil
}

// ConfirmClose closes a session pending close and classifies its variance
func (s *SessionService) ConfirmClose(ctx context.Context, cashier *cash.Cashier, id uuid.UUID) (*SessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "confirm_close",
		telemetry.SpanAttrSessionID, id.String(),
	)
	defer span.End()

	sess, err := s.owned(ctx, cashier, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := sess.ConfirmClose(s.policy); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, sess); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, sess)

	if tenantID, err := tenancy.Require(ctx); err == nil {
		s.metrics.RecordSessionClosed(ctx, tenantID, string(sess.VarianceLevel))
	}
	logger.L(ctx).Info("cash session closed",
		zap.String("session_id", sess.ID.String()),
		zap.String("calculated_balance", sess.CalculatedBalance.String()),
		zap.String("declared_balance", sess.DeclaredBalance.String()),
		zap.String("variance", sess.Variance.String()),
		zap.String("variance_level", string(sess.VarianceLevel)),
	)

	response := ToSessionResponse(sess)
	return &response, nil
}

// Reconciliation summarizes the cash flow of a CLOSED session.
// Open sessions are refused so the count stays blind.
func (s *SessionService) Reconciliation(ctx context.Context, id uuid.UUID) (*ReconciliationResponse, error) {
	sess, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsBlind() {
		return nil, shared.NewInvalidStateError("Reconciliation is available once the session is closed")
	}
	response := ToReconciliationResponse(sess.Reconcile())
	return &response, nil
}

// owned loads a session and checks that cashier operates it
func (s *SessionService) owned(ctx context.Context, cashier *cash.Cashier, id uuid.UUID) (*cash.Session, error) {
	sess, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.CashierID != cashier.ID {
		return nil, shared.NewAccessDeniedError("Session belongs to another cashier")
	}
	return sess, nil
}

func (s *SessionService) publish(ctx context.Context, sess *cash.Session) {
	events := sess.GetDomainEvents()
	sess.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish cash session events", zap.Error(err))
	}
}
