package cash

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxConceptLength = 200

// SessionStatus represents the status of a cash session
type SessionStatus string

const (
	SessionOpen    SessionStatus = "OPEN"
	SessionClosing SessionStatus = "CLOSING"
	SessionClosed  SessionStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionOpen, SessionClosing, SessionClosed:
		return true
	}
	return false
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Sessions never reopen.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionOpen:
		return target == SessionClosing
	case SessionClosing:
		return target == SessionClosed
	}
	return false
}

// Movement is an immutable cash entry or exit within a session
type Movement struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Amount    decimal.Decimal
	Concept   string
	IsIncome  bool
	Date      time.Time
}

// Signed returns the amount with the sign it applies to the balance
func (m Movement) Signed() decimal.Decimal {
	if m.IsIncome {
		return m.Amount
	}
	return m.Amount.Neg()
}

// Session is a cashier's shift on one register, from opening float to reconciled close.
// While OPEN, CalculatedBalance equals OpeningBalance plus incomes minus outflows.
type Session struct {
	shared.BaseAggregateRoot
	RegisterID        uuid.UUID
	CashierID         uuid.UUID
	OpenDate          time.Time
	CloseDate         *time.Time
	OpeningBalance    decimal.Decimal
	DeclaredBalance   *decimal.Decimal
	CalculatedBalance decimal.Decimal
	Status            SessionStatus
	Variance          *decimal.Decimal
	VarianceLevel     VarianceLevel

	movements []Movement
}

// OpenSession starts a session with the given opening float
func OpenSession(registerID, cashierID uuid.UUID, openingBalance decimal.Decimal) (*Session, error) {
	if registerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGISTER", "Register ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OPENING_BALANCE", "Opening balance cannot be negative")
	}

	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RegisterID:        registerID,
		CashierID:         cashierID,
		OpeningBalance:    openingBalance,
		CalculatedBalance: openingBalance,
		Status:            SessionOpen,
		movements:         make([]Movement, 0),
	}
	s.OpenDate = s.CreatedAt
	s.AddDomainEvent(NewSessionOpenedEvent(s))

	return s, nil
}

// AddMovement records a cash entry (isIncome) or exit and adjusts the calculated balance
func (s *Session) AddMovement(amount decimal.Decimal, concept string, isIncome bool) (*Movement, error) {
	if s.Status != SessionOpen {
		return nil, shared.NewInvalidStateError("Movements can only be added to an open session")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, shared.NewDomainError("INVALID_CONCEPT", "Movement concept cannot be empty")
	}
	if len(concept) > maxConceptLength {
		return nil, shared.NewDomainError("INVALID_CONCEPT", "Movement concept cannot exceed 200 characters")
	}

	m := Movement{
		ID:        uuid.New(),
		SessionID: s.ID,
		Amount:    amount,
		Concept:   concept,
		IsIncome:  isIncome,
		Date:      time.Now(),
	}
	s.movements = append(s.movements, m)
	s.CalculatedBalance = s.CalculatedBalance.Add(m.Signed())
	s.UpdatedAt = m.Date

	return &m, nil
}

// Movements returns a copy of the session movements in the order they were added
func (s *Session) Movements() []Movement {
	out := make([]Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// RequestClose records the cashier's blind count and moves the session to CLOSING
func (s *Session) RequestClose(declared decimal.Decimal) error {
	if s.Status != SessionOpen {
		return shared.NewInvalidStateError("Only an open session can be closed")
	}
	if declared.IsNegative() {
		return shared.NewDomainError("INVALID_DECLARED_BALANCE", "Declared balance cannot be negative")
	}

	s.DeclaredBalance = &declared
	s.Status = SessionClosing
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSessionCloseRequestedEvent(s))

	return nil
}

// ConfirmClose closes a CLOSING session and records its variance under policy
func (s *Session) ConfirmClose(policy VariancePolicy) error {
	if s.Status != SessionClosing {
		return shared.NewInvalidStateError("Only a session pending close can be confirmed")
	}

	variance := s.DeclaredBalance.Sub(s.CalculatedBalance)
	now := time.Now()
	s.Variance = &variance
	s.VarianceLevel = policy.Classify(variance)
	s.CloseDate = &now
	s.Status = SessionClosed
	s.UpdatedAt = now
	s.AddDomainEvent(NewSessionClosedEvent(s))

	return nil
}

// IsBlind reports whether the calculated balance must be hidden from the cashier
func (s *Session) IsBlind() bool {
	return s.Status != SessionClosed
}

// Reconciliation summarizes a session's cash flow
type Reconciliation struct {
	SessionID         uuid.UUID
	Status            SessionStatus
	OpeningBalance    decimal.Decimal
	TotalIncome       decimal.Decimal
	TotalOutflow      decimal.Decimal
	IncomeCount       int
	OutflowCount      int
	CalculatedBalance decimal.Decimal
	DeclaredBalance   *decimal.Decimal
	Variance          *decimal.Decimal
	VarianceLevel     VarianceLevel
}

// Reconcile computes the reconciliation from the movements
func (s *Session) Reconcile() Reconciliation {
	r := Reconciliation{
		SessionID:         s.ID,
		Status:            s.Status,
		OpeningBalance:    s.OpeningBalance,
		TotalIncome:       decimal.Zero,
		TotalOutflow:      decimal.Zero,
		CalculatedBalance: s.CalculatedBalance,
		DeclaredBalance:   s.DeclaredBalance,
		Variance:          s.Variance,
		VarianceLevel:     s.VarianceLevel,
	}
	for _, m := range s.movements {
		if m.IsIncome {
			r.TotalIncome = r.TotalIncome.Add(m.Amount)
			r.IncomeCount++
		} else {
			r.TotalOutflow = r.TotalOutflow.Add(m.Amount)
			r.OutflowCount++
		}
	}
	return r
}

// RestoreSession rebuilds a session from persisted state. The calculated balance
// is derived from the movements.
func RestoreSession(base shared.BaseAggregateRoot, registerID, cashierID uuid.UUID, openDate time.Time, closeDate *time.Time,
	openingBalance decimal.Decimal, declared *decimal.Decimal, status SessionStatus, variance *decimal.Decimal, level VarianceLevel, movements []Movement) *Session {
	s := &Session{
		BaseAggregateRoot: base,
		RegisterID:        registerID,
		CashierID:         cashierID,
		OpenDate:          openDate,
		CloseDate:         closeDate,
		OpeningBalance:    openingBalance,
		DeclaredBalance:   declared,
		Status:            status,
		Variance:          variance,
		VarianceLevel:     level,
		movements:         append(make([]Movement, 0, len(movements)), movements...),
	}
	balance := openingBalance
	for _, m := range s.movements {
		balance = balance.Add(m.Signed())
	}
	s.CalculatedBalance = balance
	return s
}
