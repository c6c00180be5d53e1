package cash

import (
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// VarianceLevel classifies the gap between declared and calculated balance
type VarianceLevel string

const (
	VarianceNormal   VarianceLevel = "NORMAL"
	VarianceWarning  VarianceLevel = "WARNING"
	VarianceCritical VarianceLevel = "CRITICAL"
)

// IsValid checks if the level is known
func (l VarianceLevel) IsValid() bool {
	switch l {
	case VarianceNormal, VarianceWarning, VarianceCritical:
		return true
	}
	return false
}

// VariancePolicy holds the absolute thresholds used to classify a variance.
// |variance| <= Warning is NORMAL, <= Critical is WARNING, anything above is CRITICAL.
type VariancePolicy struct {
	Warning  decimal.Decimal
	Critical decimal.Decimal
}

// DefaultVariancePolicy returns the thresholds used when none are configured
func DefaultVariancePolicy() VariancePolicy {
	return VariancePolicy{
		Warning:  decimal.NewFromInt(1),
		Critical: decimal.NewFromInt(20),
	}
}

// NewVariancePolicy validates thresholds
func NewVariancePolicy(warning, critical decimal.Decimal) (VariancePolicy, error) {
	if warning.IsNegative() || critical.IsNegative() {
		return VariancePolicy{}, shared.NewDomainError("INVALID_VARIANCE_POLICY", "Variance thresholds cannot be negative")
	}
	if critical.LessThan(warning) {
		return VariancePolicy{}, shared.NewDomainError("INVALID_VARIANCE_POLICY", "Critical threshold must not be below the warning threshold")
	}
	return VariancePolicy{Warning: warning, Critical: critical}, nil
}

// Classify returns the level of a signed variance
func (p VariancePolicy) Classify(variance decimal.Decimal) VarianceLevel {
	abs := variance.Abs()
	switch {
	case abs.GreaterThan(p.Critical):
		return VarianceCritical
	case abs.GreaterThan(p.Warning):
		return VarianceWarning
	default:
		return VarianceNormal
	}
}
