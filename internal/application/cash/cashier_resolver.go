package cash

import (
	"context"
	"errors"

	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cashierKey struct{}

// WithCashier caches the resolved cashier for the rest of the request
func WithCashier(ctx context.Context, c *cash.Cashier) context.Context {
	return context.WithValue(ctx, cashierKey{}, c)
}

// CashierFromContext returns the cashier resolved for this request, if any
func CashierFromContext(ctx context.Context) (*cash.Cashier, bool) {
	c, ok := ctx.Value(cashierKey{}).(*cash.Cashier)
	return c, ok && c != nil
}

// CashierResolver maps the authenticated principal to its active cashier record
type CashierResolver struct {
	cashiers cash.CashierRepository
}

// NewCashierResolver creates a new CashierResolver
func NewCashierResolver(cashiers cash.CashierRepository) *CashierResolver {
	return &CashierResolver{cashiers: cashiers}
}

// Resolve returns the active cashier of the principal in ctx.
// Every identity failure is reported as an access-denied error.
func (r *CashierResolver) Resolve(ctx context.Context) (*cash.Cashier, error) {
	if c, ok := CashierFromContext(ctx); ok {
		return c, nil
	}

	principal := logger.GetUserID(ctx)
	if principal == "" {
		return nil, shared.NewAccessDeniedError("No authenticated user")
	}
	userID, err := uuid.Parse(principal)
	if err != nil {
		return nil, shared.NewAccessDeniedError("Authenticated user ID is not valid")
	}

	c, err := r.cashiers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewAccessDeniedError("User is not a cashier")
		}
		return nil, err
	}
	if !c.IsActive {
		logger.L(ctx).Warn("inactive cashier denied", zap.String("cashier_id", c.ID.String()))
		return nil, shared.NewAccessDeniedError("Cashier is inactive")
	}
	return c, nil
}
