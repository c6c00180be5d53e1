package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDefinition(t *testing.T, module Module) *Definition {
	def, err := NewDefinition("Invoice", "FACT", "FAC", module)
	require.NoError(t, err)
	return def
}

func TestModule_IsValid(t *testing.T) {
	tests := []struct {
		module  Module
		isValid bool
	}{
		{ModuleSales, true},
		{ModulePurchases, true},
		{ModuleInventory, true},
		{ModuleTreasury, true},
		{Module("PAYROLL"), false},
		{Module(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.module), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.module.IsValid())
		})
	}
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule(" sales ")
	require.NoError(t, err)
	assert.Equal(t, ModuleSales, m)

	_, err = ParseModule("payroll")
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
}

func TestNewDefinition(t *testing.T) {
	t.Run("normalizes and initializes", func(t *testing.T) {
		def, err := NewDefinition(" Invoice ", "fact", "fac", ModuleSales)
		require.NoError(t, err)

		assert.Equal(t, "Invoice", def.Name)
		assert.Equal(t, "FACT", def.Code)
		assert.Equal(t, "FAC", def.Prefix)
		assert.Equal(t, int64(1), def.NextNumber)
		assert.True(t, def.IsActive)
		assert.JSONEq(t, "{}", string(def.Configuration))
		require.Len(t, def.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeDefinitionCreated, def.GetDomainEvents()[0].EventType())
	})

	t.Run("empty prefix is allowed", func(t *testing.T) {
		def, err := NewDefinition("Transfer", "TRF", "", ModuleInventory)
		require.NoError(t, err)
		assert.Equal(t, "", def.Prefix)
	})

	tests := []struct {
		name   string
		dName  string
		code   string
		prefix string
		module Module
		wantCode string
	}{
		{"empty name", "  ", "FACT", "FAC", ModuleSales, "INVALID_NAME"},
		{"empty code", "Invoice", "", "FAC", ModuleSales, "INVALID_CODE"},
		{"code too long", "Invoice", strings.Repeat("A", 11), "FAC", ModuleSales, "INVALID_CODE"},
		{"prefix too long", "Invoice", "FACT", strings.Repeat("P", 11), ModuleSales, "INVALID_PREFIX"},
		{"unknown module", "Invoice", "FACT", "FAC", Module("X"), "INVALID_MODULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := NewDefinition(tt.dName, tt.code, tt.prefix, tt.module)
			assert.Nil(t, def)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestDefinition_GenerateNextNumber(t *testing.T) {
	def := createTestDefinition(t, ModuleSales)

	first, err := def.GenerateNextNumber()
	require.NoError(t, err)
	assert.Equal(t, "FAC000001", first)

	second, err := def.GenerateNextNumber()
	require.NoError(t, err)
	assert.Equal(t, "FAC000002", second)
	assert.Equal(t, int64(3), def.NextNumber)
}

func TestDefinition_GenerateNextNumber_Inactive(t *testing.T) {
	def := createTestDefinition(t, ModuleSales)
	def.Deactivate()

	_, err := def.GenerateNextNumber()
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, int64(1), def.NextNumber)

	def.Reactivate()
	n, err := def.GenerateNextNumber()
	require.NoError(t, err)
	assert.Equal(t, "FAC000001", n)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "FAC000001", FormatNumber("FAC", 1))
	assert.Equal(t, "000042", FormatNumber("", 42))
	assert.Equal(t, "X1234567", FormatNumber("X", 1234567))
}

func TestDefinition_UpdateConfiguration(t *testing.T) {
	def := createTestDefinition(t, ModuleSales)

	require.NoError(t, def.UpdateConfiguration(json.RawMessage(`{"printFormat":"A4","copies":2}`)))
	assert.JSONEq(t, `{"printFormat":"A4","copies":2}`, string(def.Configuration))

	require.NoError(t, def.UpdateConfiguration(nil))
	assert.JSONEq(t, `{}`, string(def.Configuration))

	require.NoError(t, def.UpdateConfiguration(json.RawMessage("null")))
	assert.JSONEq(t, `{}`, string(def.Configuration))

	err := def.UpdateConfiguration(json.RawMessage(`[1,2]`))
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
	assert.JSONEq(t, `{}`, string(def.Configuration))
}

func TestDefinition_TransactionType(t *testing.T) {
	assert.Equal(t, TransactionStockOut, createTestDefinition(t, ModuleSales).TransactionType())
	assert.Equal(t, TransactionStockIn, createTestDefinition(t, ModulePurchases).TransactionType())
	assert.Equal(t, TransactionAccounting, createTestDefinition(t, ModuleInventory).TransactionType())
	assert.Equal(t, TransactionAccounting, createTestDefinition(t, ModuleTreasury).TransactionType())
}
