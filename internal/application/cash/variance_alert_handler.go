package cash

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// VarianceAlertHandler raises alerts for closed sessions whose variance is outside tolerance
type VarianceAlertHandler struct {
	metrics *telemetry.LedgerMetrics
}

var _ shared.EventHandler = (*VarianceAlertHandler)(nil)

// NewVarianceAlertHandler creates a new VarianceAlertHandler. metrics may be nil.
func NewVarianceAlertHandler(metrics *telemetry.LedgerMetrics) *VarianceAlertHandler {
	return &VarianceAlertHandler{metrics: metrics}
}

// EventTypes implements shared.EventHandler
func (h *VarianceAlertHandler) EventTypes() []string {
	return []string{cash.EventTypeSessionClosed}
}

// Handle logs WARNING variances at warn level and CRITICAL ones at error level
func (h *VarianceAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closed, ok := event.(*cash.SessionClosedEvent)
	if !ok || closed.VarianceLevel == cash.VarianceNormal {
		return nil
	}

	fields := []zap.Field{
		zap.String("session_id", closed.SessionID.String()),
		zap.String("register_id", closed.RegisterID.String()),
		zap.String("cashier_id", closed.CashierID.String()),
		zap.String("declared_balance", closed.DeclaredBalance.String()),
		zap.String("calculated_balance", closed.CalculatedBalance.String()),
		zap.String("variance", closed.Variance.String()),
	}
	if closed.VarianceLevel == cash.VarianceCritical {
		logger.L(ctx).Error("critical cash variance", fields...)
	} else {
		logger.L(ctx).Warn("cash variance above tolerance", fields...)
	}

	if tenantID, err := tenancy.Require(ctx); err == nil {
		h.metrics.RecordVarianceAlert(ctx, tenantID, string(closed.VarianceLevel))
	}
	return nil
}
