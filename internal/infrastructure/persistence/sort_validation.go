package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DefinitionSortFields contains allowed sort fields for document definitions
var DefinitionSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"module":     true,
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"date":            true,
	"document_number": true,
	"status":          true,
	"total_amount":    true,
}

// RegistrySortFields contains allowed sort fields for ledger rows
var RegistrySortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"value":            true,
	"quantity":         true,
	"type":             true,
}

// SessionSortFields contains allowed sort fields for cash sessions
var SessionSortFields = map[string]bool{
	"created_at": true,
	"open_date":  true,
	"close_date": true,
	"status":     true,
}

// orderClause builds a whitelisted ORDER BY expression
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

// paginate applies page/pageSize
func paginate(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize, pageSize
}
