package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	maxCodeLength   = 10
	maxPrefixLength = 10
	maxNameLength   = 100
	numberPadWidth  = 6
)

// Module is the business area a document definition posts to
type Module string

const (
	ModuleSales     Module = "SALES"
	ModulePurchases Module = "PURCHASES"
	ModuleInventory Module = "INVENTORY"
	ModuleTreasury  Module = "TREASURY"
)

// IsValid checks if the module is known
func (m Module) IsValid() bool {
	switch m {
	case ModuleSales, ModulePurchases, ModuleInventory, ModuleTreasury:
		return true
	}
	return false
}

// String returns the string representation of Module
func (m Module) String() string {
	return string(m)
}

// ParseModule parses a module name case-insensitively
func ParseModule(s string) (Module, error) {
	m := Module(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_MODULE", fmt.Sprintf("Unknown module %q", s))
	}
	return m, nil
}

// Definition describes a document type: its numbering sequence and target module.
// Definitions are never deleted, only deactivated.
type Definition struct {
	shared.BaseAggregateRoot
	Name          string
	Code          string
	Prefix        string
	NextNumber    int64
	Module        Module
	IsActive      bool
	Configuration json.RawMessage
}

// NewDefinition creates a new active document definition numbered from 1
func NewDefinition(name, code, prefix string, module Module) (*Definition, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	prefix = strings.ToUpper(strings.TrimSpace(prefix))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Definition name cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, shared.NewDomainError("INVALID_NAME", "Definition name cannot exceed 100 characters")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Definition code cannot be empty")
	}
	if len(code) > maxCodeLength {
		return nil, shared.NewDomainError("INVALID_CODE", "Definition code cannot exceed 10 characters")
	}
	if len(prefix) > maxPrefixLength {
		return nil, shared.NewDomainError("INVALID_PREFIX", "Definition prefix cannot exceed 10 characters")
	}
	if !module.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODULE", fmt.Sprintf("Unknown module %q", module))
	}

	def := &Definition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		Prefix:            prefix,
		NextNumber:        1,
		Module:            module,
		IsActive:          true,
		Configuration:     emptyConfiguration(),
	}
	def.AddDomainEvent(NewDefinitionCreatedEvent(def))

	return def, nil
}

// GenerateNextNumber formats the current counter as prefix + six-digit number
// and advances the counter. Callers must persist the definition atomically
// with whatever consumes the number.
func (d *Definition) GenerateNextNumber() (string, error) {
	if !d.IsActive {
		return "", shared.NewInvalidStateError("Cannot issue numbers from an inactive document definition")
	}
	if d.NextNumber < 1 {
		return "", shared.NewInvalidStateError("Document definition counter is corrupt")
	}

	number := FormatNumber(d.Prefix, d.NextNumber)
	d.NextNumber++
	d.UpdatedAt = time.Now()

	return number, nil
}

// FormatNumber renders a document number, e.g. FormatNumber("FAC", 1) == "FAC000001"
func FormatNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, numberPadWidth, n)
}

// UpdateConfiguration replaces the opaque configuration. An empty blob resets it to {}.
func (d *Definition) UpdateConfiguration(blob json.RawMessage) error {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.Configuration = emptyConfiguration()
		d.UpdatedAt = time.Now()
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return shared.NewDomainError("INVALID_CONFIGURATION", "Configuration must be a JSON object")
	}

	d.Configuration = append(json.RawMessage(nil), trimmed...)
	d.UpdatedAt = time.Now()
	return nil
}

// Deactivate stops the definition from issuing new numbers
func (d *Definition) Deactivate() {
	if !d.IsActive {
		return
	}
	d.IsActive = false
	d.UpdatedAt = time.Now()
}

// Reactivate re-enables a deactivated definition
func (d *Definition) Reactivate() {
	if d.IsActive {
		return
	}
	d.IsActive = true
	d.UpdatedAt = time.Now()
}

// TransactionType returns the ledger type this definition's documents generate
func (d *Definition) TransactionType() TransactionType {
	return TransactionTypeFor(d.Module)
}

func emptyConfiguration() json.RawMessage {
	return json.RawMessage("{}")
}

// RestoreDefinition rebuilds a definition from persisted state
func RestoreDefinition(id uuid.UUID, createdAt, updatedAt time.Time, version int, name, code, prefix string, nextNumber int64, module Module, isActive bool, configuration json.RawMessage) *Definition {
	if len(configuration) == 0 {
		configuration = emptyConfiguration()
	}
	return &Definition{
		BaseAggregateRoot: shared.RestoreBaseAggregateRoot(id, createdAt, updatedAt, version),
		Name:              name,
		Code:              code,
		Prefix:            prefix,
		NextNumber:        nextNumber,
		Module:            module,
		IsActive:          isActive,
		Configuration:     configuration,
	}
}
