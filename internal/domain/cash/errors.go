package cash

import "github.com/erp/ledgercore/internal/domain/shared"

// ErrSessionAlreadyOpen is returned when a register or cashier already holds an unclosed session
var ErrSessionAlreadyOpen = &shared.DomainError{
	Code:     "SESSION_ALREADY_OPEN",
	Message:  "An open session already exists for this register or cashier",
	Category: shared.CategoryConflict,
}
