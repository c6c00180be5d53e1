package document

import (
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeDefinition = "DocumentDefinition"
	AggregateTypeDocument   = "Document"
)

// Event type constants
const (
	EventTypeDefinitionCreated = "DocumentDefinitionCreated"
	EventTypeDocumentCreated   = "DocumentCreated"
	EventTypeDocumentActivated = "DocumentActivated"
	EventTypeDocumentCancelled = "DocumentCancelled"
)

// DefinitionCreatedEvent is raised when a document definition is registered
type DefinitionCreatedEvent struct {
	shared.BaseDomainEvent
	DefinitionID uuid.UUID `json:"definition_id"`
	Code         string    `json:"code"`
	Module       Module    `json:"module"`
}

// NewDefinitionCreatedEvent creates a new DefinitionCreatedEvent
func NewDefinitionCreatedEvent(def *Definition) *DefinitionCreatedEvent {
	return &DefinitionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDefinitionCreated, AggregateTypeDefinition, def.ID),
		DefinitionID:    def.ID,
		Code:            def.Code,
		Module:          def.Module,
	}
}

// DocumentCreatedEvent is raised when a draft document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DefinitionID   uuid.UUID `json:"definition_id"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(h *Header) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, h.ID),
		DocumentID:      h.ID,
		DefinitionID:    h.DefinitionID,
		DocumentNumber:  h.DocumentNumber,
	}
}

// DocumentActivatedEvent is raised when a document becomes active.
// Its ledger rows are committed in the same transaction as the status change.
type DocumentActivatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	LineCount      int             `json:"line_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	WarehouseID    *uuid.UUID      `json:"warehouse_id,omitempty"`
}

// NewDocumentActivatedEvent creates a new DocumentActivatedEvent
func NewDocumentActivatedEvent(h *Header) *DocumentActivatedEvent {
	return &DocumentActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentActivated, AggregateTypeDocument, h.ID),
		DocumentID:      h.ID,
		DocumentNumber:  h.DocumentNumber,
		LineCount:       len(h.lines),
		TotalAmount:     h.TotalAmount,
		TotalTax:        h.TotalTax,
		TotalDiscount:   h.TotalDiscount,
		WarehouseID:     h.WarehouseID,
	}
}

// DocumentCancelledEvent is raised when a draft document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	Reason         string    `json:"reason"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(h *Header) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeDocument, h.ID),
		DocumentID:      h.ID,
		DocumentNumber:  h.DocumentNumber,
		Reason:          h.CancelReason,
	}
}
