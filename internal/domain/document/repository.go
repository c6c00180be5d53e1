package document

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// DefinitionRepository defines the interface for document definition persistence
type DefinitionRepository interface {
	// FindByID finds a definition by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Definition, error)

	// FindByCode finds a definition by its tenant-unique code
	FindByCode(ctx context.Context, code string) (*Definition, error)

	// FindAll lists definitions
	FindAll(ctx context.Context, filter shared.Filter) ([]Definition, int64, error)

	// Create inserts a new definition; a duplicate code yields shared.ErrAlreadyExists
	Create(ctx context.Context, def *Definition) error

	// SaveWithLock updates with optimistic locking (version check)
	SaveWithLock(ctx context.Context, def *Definition) error

	// NextNumber atomically issues the next document number of a definition.
	// A lost race yields shared.ErrConcurrencyConflict and never a duplicate.
	NextNumber(ctx context.Context, id uuid.UUID) (string, error)
}

// HeaderRepository defines the interface for document persistence
type HeaderRepository interface {
	// FindByID finds a document with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Header, error)

	// FindByNumber finds a document by its tenant-unique number
	FindByNumber(ctx context.Context, number string) (*Header, error)

	// FindAll lists documents; lines are not loaded
	FindAll(ctx context.Context, filter shared.Filter) ([]Header, int64, error)

	// Create inserts a new document and its lines
	Create(ctx context.Context, h *Header) error

	// SaveWithLock updates the header with a version check and inserts lines it does not have yet
	SaveWithLock(ctx context.Context, h *Header) error
}

// RegistryRepository defines the interface for the append-only ledger
type RegistryRepository interface {
	// Append inserts ledger rows
	Append(ctx context.Context, entries []RegistryEntry) error

	// DeleteByHeader removes the rows of one document, used only to replay it
	DeleteByHeader(ctx context.Context, headerID uuid.UUID) (int64, error)

	// FindByHeader returns the rows of one document
	FindByHeader(ctx context.Context, headerID uuid.UUID) ([]RegistryEntry, error)

	// Find lists rows matching filter
	Find(ctx context.Context, filter RegistryFilter, page shared.Filter) ([]RegistryEntry, int64, error)

	// Summarize totals rows per transaction type
	Summarize(ctx context.Context, filter RegistryFilter) ([]RegistryTotal, error)
}
