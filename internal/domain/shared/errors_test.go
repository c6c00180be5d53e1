package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewInvalidStateError("Cannot add lines to an active document")

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("activate: %w", err), ErrInvalidState))
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"validation", NewDomainError("INVALID_CODE", "bad"), CategoryValidation},
		{"invalid state", ErrInvalidState, CategoryInvalidState},
		{"access", NewAccessDeniedError("inactive cashier"), CategoryAccess},
		{"tenant", ErrTenantRequired, CategoryAccess},
		{"concurrency", fmt.Errorf("wrapped: %w", ErrConcurrencyConflict), CategoryConcurrency},
		{"plain error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, CategoryOf(tt.err))
			if tt.category != "" {
				assert.True(t, IsCategory(tt.err, tt.category))
			}
		})
	}
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)
}
