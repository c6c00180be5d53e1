package middleware

import (
	"context"
	"errors"
	"net/http"

	cashapp "github.com/erp/ledgercore/internal/application/cash"
	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CashierResolver resolves the acting cashier of a request
type CashierResolver interface {
	Resolve(ctx context.Context) (*cash.Cashier, error)
}

// CashierMiddleware resolves the authenticated user's cashier record once
// per request and caches it on the request context. Must run after the
// JWT and tenant middleware.
func CashierMiddleware(resolver CashierResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		cashier, err := resolver.Resolve(ctx)
		if err != nil {
			requestID := c.GetString(RequestIDKey)
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				c.AbortWithStatusJSON(dto.StatusForDomainError(domainErr),
					dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Could not resolve cashier", requestID))
			return
		}

		c.Request = c.Request.WithContext(cashapp.WithCashier(ctx, cashier))
		c.Next()
	}
}
