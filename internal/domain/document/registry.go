package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger row
type TransactionType string

const (
	TransactionStockIn  TransactionType = "STOCK_IN"
	TransactionStockOut TransactionType = "STOCK_OUT"
	// TransactionCashIn and TransactionCashOut are reserved for treasury
	// postings; no module maps to them yet.
	TransactionCashIn     TransactionType = "CASH_IN"
	TransactionCashOut    TransactionType = "CASH_OUT"
	TransactionAccounting TransactionType = "ACCOUNTING"
)

// IsValid checks if the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionStockIn, TransactionStockOut, TransactionCashIn, TransactionCashOut, TransactionAccounting:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionTypeFor maps a definition module to the ledger type its documents post
func TransactionTypeFor(m Module) TransactionType {
	switch m {
	case ModuleSales:
		return TransactionStockOut
	case ModulePurchases:
		return TransactionStockIn
	default:
		return TransactionAccounting
	}
}

// RegistryEntry is one denormalized ledger row derived from an active document line.
// Entries are append-only and can always be rebuilt from their document.
type RegistryEntry struct {
	ID              uuid.UUID
	HeaderID        uuid.UUID
	LineID          uuid.UUID
	ItemID          *uuid.UUID
	Quantity        decimal.Decimal
	Value           decimal.Decimal
	Type            TransactionType
	TransactionDate time.Time
	WarehouseID     *uuid.UUID
	CreatedAt       time.Time
}

// BuildRegistryEntries derives one ledger row per line of an activated header.
// The header is trusted to be valid and ACTIVE.
func BuildRegistryEntries(h *Header, module Module) []RegistryEntry {
	txType := TransactionTypeFor(module)
	now := time.Now()

	entries := make([]RegistryEntry, 0, len(h.lines))
	for _, line := range h.lines {
		var itemID *uuid.UUID
		if line.ItemID != uuid.Nil {
			id := line.ItemID
			itemID = &id
		}
		entries = append(entries, RegistryEntry{
			ID:              uuid.New(),
			HeaderID:        h.ID,
			LineID:          line.ID,
			ItemID:          itemID,
			Quantity:        line.Quantity,
			Value:           line.Total(),
			Type:            txType,
			TransactionDate: h.Date,
			WarehouseID:     h.WarehouseID,
			CreatedAt:       now,
		})
	}
	return entries
}

// RegistryFilter narrows a registry query
type RegistryFilter struct {
	Type        TransactionType
	HeaderID    *uuid.UUID
	WarehouseID *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// RegistryTotal aggregates registry rows of one transaction type
type RegistryTotal struct {
	Type     TransactionType
	Entries  int64
	Quantity decimal.Decimal
	Value    decimal.Decimal
}
