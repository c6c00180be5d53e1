package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"asc", "ASC"},
		{"  asc  ", "ASC"},
		{"DESC", "DESC"},
		{"ASC; DROP TABLE documents;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "date ASC", orderClause("date", "asc", DocumentSortFields, "created_at"))
	assert.Equal(t, "created_at DESC", orderClause("total_amount;--", "", DocumentSortFields, "created_at"))
	assert.Equal(t, "code DESC", orderClause("", "", DefinitionSortFields, "code"))
}

func TestPaginate(t *testing.T) {
	offset, limit := paginate(0, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 20, limit)

	offset, limit = paginate(3, 50)
	assert.Equal(t, 100, offset)
	assert.Equal(t, 50, limit)

	_, limit = paginate(1, 10000)
	assert.Equal(t, 200, limit)
}
