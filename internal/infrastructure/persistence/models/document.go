package models

import (
	"encoding/json"
	"time"

	"github.com/erp/ledgercore/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// DocumentDefinitionModel is the persistence model for document definitions
type DocumentDefinitionModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(100);not null"`
	Code          string          `gorm:"type:varchar(10);not null;uniqueIndex"`
	Prefix        string          `gorm:"type:varchar(10);not null;default:'';uniqueIndex"`
	NextNumber    int64           `gorm:"not null;default:1"`
	Module        document.Module `gorm:"type:varchar(20);not null;index"`
	IsActive      bool            `gorm:"not null;default:true"`
	Configuration datatypes.JSON  `gorm:"not null"`
}

// TableName resolves the table inside the current namespace
func (DocumentDefinitionModel) TableName(namer schema.Namer) string {
	return namer.TableName("DocumentDefinition")
}

// ToDomain converts the persistence model to a domain entity
func (m *DocumentDefinitionModel) ToDomain() *document.Definition {
	return document.RestoreDefinition(m.ID, m.CreatedAt, m.UpdatedAt, m.Version,
		m.Name, m.Code, m.Prefix, m.NextNumber, m.Module, m.IsActive, json.RawMessage(m.Configuration))
}

// DocumentDefinitionModelFromDomain creates a persistence model from a domain entity
func DocumentDefinitionModelFromDomain(d *document.Definition) *DocumentDefinitionModel {
	m := &DocumentDefinitionModel{
		Name:          d.Name,
		Code:          d.Code,
		Prefix:        d.Prefix,
		NextNumber:    d.NextNumber,
		Module:        d.Module,
		IsActive:      d.IsActive,
		Configuration: datatypes.JSON(d.Configuration),
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// DocumentHeaderModel is the persistence model for document headers
type DocumentHeaderModel struct {
	AggregateModel
	DefinitionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentNumber string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Date           time.Time       `gorm:"not null;index"`
	Status         document.Status `gorm:"type:varchar(20);not null;index"`
	WarehouseID    *uuid.UUID      `gorm:"type:uuid;index"`
	ThirdPartyID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalDiscount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActivatedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string              `gorm:"type:varchar(500)"`
	Lines          []DocumentLineModel `gorm:"foreignKey:HeaderID;references:ID"`
}

// TableName resolves the table inside the current namespace
func (DocumentHeaderModel) TableName(namer schema.Namer) string {
	return namer.TableName("Document")
}

// ToDomain converts the persistence model to a domain aggregate
func (m *DocumentHeaderModel) ToDomain() *document.Header {
	lines := make([]document.Line, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	h := document.RestoreHeader(m.ToDomainAggregateRoot(), m.DefinitionID, m.DocumentNumber, m.Date, m.Status,
		m.WarehouseID, m.ThirdPartyID, m.CreatedBy, m.ActivatedAt, m.CancelledAt, m.CancelReason, lines)
	// Listings load headers without lines; trust the stored totals then.
	if len(m.Lines) == 0 {
		h.TotalAmount = m.TotalAmount
		h.TotalTax = m.TotalTax
		h.TotalDiscount = m.TotalDiscount
	}
	return h
}

// DocumentHeaderModelFromDomain creates a persistence model, lines included
func DocumentHeaderModelFromDomain(h *document.Header) *DocumentHeaderModel {
	m := &DocumentHeaderModel{
		DefinitionID:   h.DefinitionID,
		DocumentNumber: h.DocumentNumber,
		Date:           h.Date,
		Status:         h.Status,
		WarehouseID:    h.WarehouseID,
		ThirdPartyID:   h.ThirdPartyID,
		CreatedBy:      h.CreatedBy,
		TotalAmount:    h.TotalAmount,
		TotalTax:       h.TotalTax,
		TotalDiscount:  h.TotalDiscount,
		ActivatedAt:    h.ActivatedAt,
		CancelledAt:    h.CancelledAt,
		CancelReason:   h.CancelReason,
	}
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	for _, l := range h.Lines() {
		m.Lines = append(m.Lines, DocumentLineModelFromDomain(l))
	}
	return m
}

// DocumentLineModel is the persistence model for document lines.
// Derived amounts are not stored.
type DocumentLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	HeaderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo         int             `gorm:"not null"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName       string          `gorm:"type:varchar(200);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName resolves the table inside the current namespace
func (DocumentLineModel) TableName(namer schema.Namer) string {
	return namer.TableName("DocumentLine")
}

// ToDomain converts the persistence model to a domain line
func (m *DocumentLineModel) ToDomain() document.Line {
	return document.Line{
		ID:             m.ID,
		HeaderID:       m.HeaderID,
		LineNo:         m.LineNo,
		ItemID:         m.ItemID,
		ItemName:       m.ItemName,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		TaxRate:        m.TaxRate,
		DiscountAmount: m.DiscountAmount,
		CreatedAt:      m.CreatedAt,
	}
}

// DocumentLineModelFromDomain creates a persistence model from a domain line
func DocumentLineModelFromDomain(l document.Line) DocumentLineModel {
	return DocumentLineModel{
		ID:             l.ID,
		HeaderID:       l.HeaderID,
		LineNo:         l.LineNo,
		ItemID:         l.ItemID,
		ItemName:       l.ItemName,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		TaxRate:        l.TaxRate,
		DiscountAmount: l.DiscountAmount,
		CreatedAt:      l.CreatedAt,
	}
}
