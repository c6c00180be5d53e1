package cash

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRegisterRequest represents a request to create a cash register
type CreateRegisterRequest struct {
	Code string `json:"code" binding:"required,min=1,max=20"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// RegisterResponse represents a cash register in API responses
type RegisterResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCashierRequest represents a request to authorize a user as cashier
type CreateCashierRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Name   string    `json:"name" binding:"required,min=1,max=100"`
}

// CashierResponse represents a cashier in API responses
type CashierResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenSessionRequest represents a request to open a register
type OpenSessionRequest struct {
	RegisterID     uuid.UUID       `json:"register_id" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"gte=0"`
}

// AddMovementRequest represents a cash entry or exit
type AddMovementRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Concept  string          `json:"concept" binding:"required,max=200"`
	IsIncome bool            `json:"is_income"`
}

// RequestCloseRequest carries the cashier's blind count
type RequestCloseRequest struct {
	DeclaredBalance decimal.Decimal `json:"declared_balance" binding:"gte=0"`
}

// SessionListFilter represents filter options for listing sessions
type SessionListFilter struct {
	Status     string     `form:"status"`
	RegisterID *uuid.UUID `form:"register_id"`
	CashierID  *uuid.UUID `form:"cashier_id"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementResponse represents a session movement in API responses.
// Amount is omitted while the count is blind, since opening balance plus the
// amounts would reveal the calculated balance.
type MovementResponse struct {
	ID       uuid.UUID        `json:"id"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Concept  string           `json:"concept"`
	IsIncome bool             `json:"is_income"`
	Date     time.Time        `json:"date"`
}

// SessionResponse represents a cash session in API responses.
// CalculatedBalance, Variance and VarianceLevel stay empty until the session is CLOSED.
type SessionResponse struct {
	ID                uuid.UUID          `json:"id"`
	RegisterID        uuid.UUID          `json:"register_id"`
	CashierID         uuid.UUID          `json:"cashier_id"`
	Status            string             `json:"status"`
	OpenDate          time.Time          `json:"open_date"`
	CloseDate         *time.Time         `json:"close_date,omitempty"`
	OpeningBalance    decimal.Decimal    `json:"opening_balance"`
	DeclaredBalance   *decimal.Decimal   `json:"declared_balance,omitempty"`
	CalculatedBalance *decimal.Decimal   `json:"calculated_balance,omitempty"`
	Variance          *decimal.Decimal   `json:"variance,omitempty"`
	VarianceLevel     string             `json:"variance_level,omitempty"`
	Movements         []MovementResponse `json:"movements,omitempty"`
	Version           int                `json:"version"`
}

// ReconciliationResponse summarizes a closed session's cash flow
type ReconciliationResponse struct {
	SessionID         uuid.UUID        `json:"session_id"`
	Status            string           `json:"status"`
	OpeningBalance    decimal.Decimal  `json:"opening_balance"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	TotalOutflow      decimal.Decimal  `json:"total_outflow"`
	IncomeCount       int              `json:"income_count"`
	OutflowCount      int              `json:"outflow_count"`
	CalculatedBalance decimal.Decimal  `json:"calculated_balance"`
	DeclaredBalance   *decimal.Decimal `json:"declared_balance,omitempty"`
	Variance          *decimal.Decimal `json:"variance,omitempty"`
	VarianceLevel     string           `json:"variance_level,omitempty"`
}

// ToRegisterResponse converts a register to a response DTO
func ToRegisterResponse(r *cash.Register) RegisterResponse {
	return RegisterResponse{ID: r.ID, Code: r.Code, Name: r.Name, IsActive: r.IsActive, CreatedAt: r.CreatedAt}
}

// ToCashierResponse converts a cashier to a response DTO
func ToCashierResponse(c *cash.Cashier) CashierResponse {
	return CashierResponse{ID: c.ID, UserID: c.UserID, Name: c.Name, IsActive: c.IsActive, CreatedAt: c.CreatedAt}
}

// ToSessionResponse converts a session to a response DTO, hiding the
// calculated balance from a blind count
func ToSessionResponse(s *cash.Session) SessionResponse {
	resp := toSessionListItem(s)
	movements := s.Movements()
	resp.Movements = make([]MovementResponse, len(movements))
	blind := s.IsBlind()
	for i, m := range movements {
		resp.Movements[i] = MovementResponse{
			ID:       m.ID,
			Concept:  m.Concept,
			IsIncome: m.IsIncome,
			Date:     m.Date,
		}
		if !blind {
			amount := m.Amount
			resp.Movements[i].Amount = &amount
		}
	}
	return resp
}

func toSessionListItem(s *cash.Session) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		RegisterID:      s.RegisterID,
		CashierID:       s.CashierID,
		Status:          s.Status.String(),
		OpenDate:        s.OpenDate,
		CloseDate:       s.CloseDate,
		OpeningBalance:  s.OpeningBalance,
		DeclaredBalance: s.DeclaredBalance,
		Version:         s.Version,
	}
	if !s.IsBlind() {
		calculated := s.CalculatedBalance
		resp.CalculatedBalance = &calculated
		resp.Variance = s.Variance
		resp.VarianceLevel = string(s.VarianceLevel)
	}
	return resp
}

// ToReconciliationResponse converts a reconciliation to a response DTO
func ToReconciliationResponse(r cash.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		SessionID:         r.SessionID,
		Status:            r.Status.String(),
		OpeningBalance:    r.OpeningBalance,
		TotalIncome:       r.TotalIncome,
		TotalOutflow:      r.TotalOutflow,
		IncomeCount:       r.IncomeCount,
		OutflowCount:      r.OutflowCount,
		CalculatedBalance: r.CalculatedBalance,
		DeclaredBalance:   r.DeclaredBalance,
		Variance:          r.Variance,
		VarianceLevel:     string(r.VarianceLevel),
	}
}
