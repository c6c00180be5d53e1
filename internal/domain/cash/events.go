package cash

import (
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSession is the aggregate type of cash session events
const AggregateTypeSession = "CashSession"

// Event type constants
const (
	EventTypeSessionOpened         = "CashSessionOpened"
	EventTypeSessionCloseRequested = "CashSessionCloseRequested"
	EventTypeSessionClosed         = "CashSessionClosed"
)

// SessionOpenedEvent is raised when a cashier opens a register
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	RegisterID     uuid.UUID       `json:"register_id"`
	CashierID      uuid.UUID       `json:"cashier_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *Session) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		RegisterID:      s.RegisterID,
		CashierID:       s.CashierID,
		OpeningBalance:  s.OpeningBalance,
	}
}

// SessionCloseRequestedEvent carries the blind count only, never the calculated balance
type SessionCloseRequestedEvent struct {
	shared.BaseDomainEvent
	SessionID       uuid.UUID       `json:"session_id"`
	CashierID       uuid.UUID       `json:"cashier_id"`
	DeclaredBalance decimal.Decimal `json:"declared_balance"`
}

// NewSessionCloseRequestedEvent creates a new SessionCloseRequestedEvent
func NewSessionCloseRequestedEvent(s *Session) *SessionCloseRequestedEvent {
	return &SessionCloseRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCloseRequested, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		CashierID:       s.CashierID,
		DeclaredBalance: *s.DeclaredBalance,
	}
}

// SessionClosedEvent is raised when a close is confirmed; it carries the variance
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID         uuid.UUID       `json:"session_id"`
	RegisterID        uuid.UUID       `json:"register_id"`
	CashierID         uuid.UUID       `json:"cashier_id"`
	DeclaredBalance   decimal.Decimal `json:"declared_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Variance          decimal.Decimal `json:"variance"`
	VarianceLevel     VarianceLevel   `json:"variance_level"`
}

// NewSessionClosedEvent creates a new SessionClosedEvent
func NewSessionClosedEvent(s *Session) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeSession, s.ID),
		SessionID:         s.ID,
		RegisterID:        s.RegisterID,
		CashierID:         s.CashierID,
		DeclaredBalance:   *s.DeclaredBalance,
		CalculatedBalance: s.CalculatedBalance,
		Variance:          *s.Variance,
		VarianceLevel:     s.VarianceLevel,
	}
}
