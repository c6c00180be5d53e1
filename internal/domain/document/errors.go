package document

import "github.com/erp/ledgercore/internal/domain/shared"

// ErrDuplicateDefinition is returned when a definition reuses a code or a number prefix.
// It matches shared.ErrAlreadyExists.
var ErrDuplicateDefinition = &shared.DomainError{
	Code:     shared.ErrAlreadyExists.Code,
	Message:  "A document definition with this code or prefix already exists",
	Category: shared.CategoryConflict,
}
