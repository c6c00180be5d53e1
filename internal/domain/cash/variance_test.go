package cash

import (
	"testing"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariancePolicy_Classify(t *testing.T) {
	policy, err := NewVariancePolicy(d("1"), d("20"))
	require.NoError(t, err)

	tests := []struct {
		variance string
		want     VarianceLevel
	}{
		{"0", VarianceNormal},
		{"1", VarianceNormal},
		{"-1", VarianceNormal},
		{"1.01", VarianceWarning},
		{"-20", VarianceWarning},
		{"20.01", VarianceCritical},
		{"-500", VarianceCritical},
	}

	for _, tt := range tests {
		t.Run(tt.variance, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Classify(d(tt.variance)))
		})
	}
}

func TestNewVariancePolicy_Invalid(t *testing.T) {
	_, err := NewVariancePolicy(d("-1"), d("5"))
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))

	_, err = NewVariancePolicy(d("10"), d("5"))
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
}

func TestNewCashierAndRegister(t *testing.T) {
	r, err := NewRegister(" pos-1 ", "Front desk")
	require.NoError(t, err)
	assert.Equal(t, "POS-1", r.Code)
	assert.True(t, r.IsActive)

	_, err = NewRegister("", "x")
	assert.Error(t, err)

	_, err = NewCashier(uuid.Nil, "Ana")
	assert.True(t, shared.IsCategory(err, shared.CategoryValidation))
}
