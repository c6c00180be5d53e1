package document

import (
	"encoding/json"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDefinitionRequest represents a request to create a document definition
type CreateDefinitionRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	Code          string          `json:"code" binding:"required,min=1,max=10"`
	Prefix        string          `json:"prefix" binding:"max=10"`
	Module        string          `json:"module" binding:"required"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// UpdateConfigurationRequest replaces the configuration blob of a definition
type UpdateConfigurationRequest struct {
	Configuration json.RawMessage `json:"configuration"`
}

// DefinitionListFilter represents filter options for listing definitions
type DefinitionListFilter struct {
	Module   string `form:"module"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DefinitionResponse represents a document definition in API responses
type DefinitionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Prefix        string          `json:"prefix"`
	NextNumber    int64           `json:"next_number"`
	Module        string          `json:"module"`
	IsActive      bool            `json:"is_active"`
	Configuration json.RawMessage `json:"configuration"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LineRequest represents one line of a document
type LineRequest struct {
	ItemID         uuid.UUID        `json:"item_id" binding:"required"`
	ItemName       string           `json:"item_name" binding:"required,min=1,max=200"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
}

// CreateDocumentRequest represents a request to create a draft document
type CreateDocumentRequest struct {
	DefinitionID uuid.UUID     `json:"definition_id" binding:"required"`
	WarehouseID  *uuid.UUID    `json:"warehouse_id,omitempty"`
	ThirdPartyID *uuid.UUID    `json:"third_party_id,omitempty"`
	Lines        []LineRequest `json:"lines" binding:"omitempty,dive"`
}

// CancelDocumentRequest represents a request to cancel a document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// DocumentListFilter represents filter options for listing documents
type DocumentListFilter struct {
	Status       string     `form:"status"`
	DefinitionID *uuid.UUID `form:"definition_id"`
	WarehouseID  *uuid.UUID `form:"warehouse_id"`
	ThirdPartyID *uuid.UUID `form:"third_party_id"`
	From         *time.Time `form:"from" time_format:"2006-01-02"`
	To           *time.Time `form:"to" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"min=0"`
	PageSize     int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse represents a document line in API responses
type LineResponse struct {
	ID             uuid.UUID       `json:"id"`
	LineNo         int             `json:"line_no"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemName       string          `json:"item_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// DocumentResponse represents a document in API responses.
// Lines is omitted in list responses.
type DocumentResponse struct {
	ID             uuid.UUID       `json:"id"`
	DefinitionID   uuid.UUID       `json:"definition_id"`
	DocumentNumber string          `json:"document_number"`
	Date           time.Time       `json:"date"`
	Status         string          `json:"status"`
	WarehouseID    *uuid.UUID      `json:"warehouse_id,omitempty"`
	ThirdPartyID   *uuid.UUID      `json:"third_party_id,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	ActivatedAt    *time.Time      `json:"activated_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	Lines          []LineResponse  `json:"lines,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RegistryListFilter represents filter options for querying the transaction registry
type RegistryListFilter struct {
	Type        string     `form:"type"`
	HeaderID    *uuid.UUID `form:"header_id"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=500"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RegistryEntryResponse represents a ledger row in API responses
type RegistryEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	HeaderID        uuid.UUID       `json:"header_id"`
	LineID          uuid.UUID       `json:"line_id"`
	ItemID          *uuid.UUID      `json:"item_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Value           decimal.Decimal `json:"value"`
	Type            string          `json:"type"`
	TransactionDate time.Time       `json:"transaction_date"`
	WarehouseID     *uuid.UUID      `json:"warehouse_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RegistryTotalResponse represents per-type registry totals
type RegistryTotalResponse struct {
	Type     string          `json:"type"`
	Entries  int64           `json:"entries"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// RebuildRegistryResponse reports a registry replay of one document
type RebuildRegistryResponse struct {
	HeaderID uuid.UUID `json:"header_id"`
	Removed  int64     `json:"removed"`
	Written  int       `json:"written"`
}

// ToDefinitionResponse converts a domain definition to a response DTO
func ToDefinitionResponse(d *document.Definition) DefinitionResponse {
	return DefinitionResponse{
		ID:            d.ID,
		Name:          d.Name,
		Code:          d.Code,
		Prefix:        d.Prefix,
		NextNumber:    d.NextNumber,
		Module:        d.Module.String(),
		IsActive:      d.IsActive,
		Configuration: d.Configuration,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDocumentResponse converts a domain header with its lines to a response DTO
func ToDocumentResponse(h *document.Header) DocumentResponse {
	resp := toDocumentListItem(h)
	lines := h.Lines()
	resp.Lines = make([]LineResponse, len(lines))
	for i, l := range lines {
		resp.Lines[i] = LineResponse{
			ID:             l.ID,
			LineNo:         l.LineNo,
			ItemID:         l.ItemID,
			ItemName:       l.ItemName,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TaxRate:        l.TaxRate,
			DiscountAmount: l.DiscountAmount,
			Subtotal:       l.Subtotal(),
			TaxAmount:      l.TaxAmount(),
			Total:          l.Total(),
		}
	}
	return resp
}

func toDocumentListItem(h *document.Header) DocumentResponse {
	return DocumentResponse{
		ID:             h.ID,
		DefinitionID:   h.DefinitionID,
		DocumentNumber: h.DocumentNumber,
		Date:           h.Date,
		Status:         h.Status.String(),
		WarehouseID:    h.WarehouseID,
		ThirdPartyID:   h.ThirdPartyID,
		CreatedBy:      h.CreatedBy,
		TotalAmount:    h.TotalAmount,
		TotalTax:       h.TotalTax,
		TotalDiscount:  h.TotalDiscount,
		ActivatedAt:    h.ActivatedAt,
		CancelledAt:    h.CancelledAt,
		CancelReason:   h.CancelReason,
		Version:        h.Version,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
	}
}

// ToRegistryEntryResponse converts a ledger row to a response DTO
func ToRegistryEntryResponse(e document.RegistryEntry) RegistryEntryResponse {
	return RegistryEntryResponse{
		ID:              e.ID,
		HeaderID:        e.HeaderID,
		LineID:          e.LineID,
		ItemID:          e.ItemID,
		Quantity:        e.Quantity,
		Value:           e.Value,
		Type:            e.Type.String(),
		TransactionDate: e.TransactionDate,
		WarehouseID:     e.WarehouseID,
		CreatedAt:       e.CreatedAt,
	}
}

func (in LineRequest) toInput() document.LineInput {
	out := document.LineInput{
		ItemID:    in.ItemID,
		ItemName:  in.ItemName,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	}
	if in.TaxRate != nil {
		out.TaxRate = *in.TaxRate
	}
	if in.DiscountAmount != nil {
		out.DiscountAmount = *in.DiscountAmount
	}
	return out
}
