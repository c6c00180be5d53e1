package document

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxDocumentNumberLength = 30

var hundred = decimal.NewFromInt(100)

// Status represents the lifecycle status of a document
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	// StatusRefunded is declared for compatibility with existing data.
	// No operation drives a document into it.
	StatusRefunded Status = "REFUNDED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusActive || target == StatusCancelled
	case StatusActive, StatusCancelled, StatusRefunded:
		return false
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s != StatusDraft
}

// Line is one itemized row of a document. Derived amounts are computed on read.
type Line struct {
	ID             uuid.UUID
	HeaderID       uuid.UUID
	LineNo         int
	ItemID         uuid.UUID
	ItemName       string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRate        decimal.Decimal // percentage, e.g. 19 for 19%
	DiscountAmount decimal.Decimal
	CreatedAt      time.Time
}

// Subtotal returns quantity × unit price
func (l Line) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TaxAmount returns subtotal × taxRate / 100
func (l Line) TaxAmount() decimal.Decimal {
	return l.Subtotal().Mul(l.TaxRate).Div(hundred)
}

// Total returns subtotal + tax − discount
func (l Line) Total() decimal.Decimal {
	return l.Subtotal().Add(l.TaxAmount()).Sub(l.DiscountAmount)
}

// LineInput carries the values of a line to add
type LineInput struct {
	ItemID         uuid.UUID
	ItemName       string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxRate        decimal.Decimal
	DiscountAmount decimal.Decimal
}

func (in LineInput) validate() error {
	if in.ItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if strings.TrimSpace(in.ItemName) == "" {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if in.TaxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if in.DiscountAmount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	return nil
}

// Header is the document aggregate root. Lines are owned by the header and
// only change through AddLine, so totals always equal the sum of the lines.
type Header struct {
	shared.BaseAggregateRoot
	DefinitionID   uuid.UUID
	DocumentNumber string
	Date           time.Time
	Status         Status
	WarehouseID    *uuid.UUID
	ThirdPartyID   *uuid.UUID
	CreatedBy      uuid.UUID
	TotalAmount    decimal.Decimal
	TotalTax       decimal.Decimal
	TotalDiscount  decimal.Decimal
	ActivatedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string

	lines []Line
}

// NewHeader creates a draft document
func NewHeader(definitionID uuid.UUID, number string, warehouseID, thirdPartyID *uuid.UUID, createdBy uuid.UUID) (*Header, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if definitionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEFINITION", "Document definition ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(number) > maxDocumentNumberLength {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 30 characters")
	}

	h := &Header{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DefinitionID:      definitionID,
		DocumentNumber:    number,
		Status:            StatusDraft,
		WarehouseID:       warehouseID,
		ThirdPartyID:      thirdPartyID,
		CreatedBy:         createdBy,
		TotalAmount:       decimal.Zero,
		TotalTax:          decimal.Zero,
		TotalDiscount:     decimal.Zero,
		lines:             make([]Line, 0),
	}
	h.Date = h.CreatedAt
	h.AddDomainEvent(NewDocumentCreatedEvent(h))

	return h, nil
}

// AddLine appends a line and recomputes totals. Only allowed in DRAFT.
func (h *Header) AddLine(in LineInput) (*Line, error) {
	if h.Status != StatusDraft {
		return nil, shared.NewInvalidStateError("Cannot add lines to a non-draft document")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	line := Line{
		ID:             uuid.New(),
		HeaderID:       h.ID,
		LineNo:         len(h.lines) + 1,
		ItemID:         in.ItemID,
		ItemName:       strings.TrimSpace(in.ItemName),
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		TaxRate:        in.TaxRate,
		DiscountAmount: in.DiscountAmount,
		CreatedAt:      time.Now(),
	}

	h.lines = append(h.lines, line)
	h.recalculateTotals()
	h.UpdatedAt = time.Now()

	return &line, nil
}

// Lines returns a copy of the document lines in insertion order
func (h *Header) Lines() []Line {
	out := make([]Line, len(h.lines))
	copy(out, h.lines)
	return out
}

// LineCount returns the number of lines
func (h *Header) LineCount() int {
	return len(h.lines)
}

// Activate moves a draft with at least one line to ACTIVE.
// Ledger rows must be written in the same unit of work.
func (h *Header) Activate() error {
	if h.Status != StatusDraft {
		return shared.NewInvalidStateError("Only draft documents can be activated")
	}
	if len(h.lines) == 0 {
		return shared.NewInvalidStateError("Cannot activate a document without lines")
	}

	now := time.Now()
	h.Status = StatusActive
	h.ActivatedAt = &now
	h.UpdatedAt = now
	h.AddDomainEvent(NewDocumentActivatedEvent(h))

	return nil
}

// Cancel moves a draft to CANCELLED. Cancelling an already cancelled document
// is a no-op; an active document has ledger rows and cannot be cancelled.
func (h *Header) Cancel(reason string) error {
	switch h.Status {
	case StatusCancelled:
		return nil
	case StatusDraft:
	default:
		return shared.NewInvalidStateError("Only draft documents can be cancelled")
	}

	now := time.Now()
	h.Status = StatusCancelled
	h.CancelledAt = &now
	h.CancelReason = strings.TrimSpace(reason)
	h.UpdatedAt = now
	h.AddDomainEvent(NewDocumentCancelledEvent(h))

	return nil
}

// recalculateTotals recomputes header totals from scratch to avoid drift
func (h *Header) recalculateTotals() {
	total := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero
	for _, l := range h.lines {
		total = total.Add(l.Total())
		tax = tax.Add(l.TaxAmount())
		discount = discount.Add(l.DiscountAmount)
	}
	h.TotalAmount = total
	h.TotalTax = tax
	h.TotalDiscount = discount
}

// RestoreHeader rebuilds a header and its lines from persisted state.
// Totals are recomputed from the lines rather than trusted from storage.
func RestoreHeader(base shared.BaseAggregateRoot, definitionID uuid.UUID, number string, date time.Time, status Status, warehouseID, thirdPartyID *uuid.UUID, createdBy uuid.UUID, activatedAt, cancelledAt *time.Time, cancelReason string, lines []Line) *Header {
	h := &Header{
		BaseAggregateRoot: base,
		DefinitionID:      definitionID,
		DocumentNumber:    number,
		Date:              date,
		Status:            status,
		WarehouseID:       warehouseID,
		ThirdPartyID:      thirdPartyID,
		CreatedBy:         createdBy,
		ActivatedAt:       activatedAt,
		CancelledAt:       cancelledAt,
		CancelReason:      cancelReason,
		lines:             append(make([]Line, 0, len(lines)), lines...),
	}
	h.recalculateTotals()
	return h
}
