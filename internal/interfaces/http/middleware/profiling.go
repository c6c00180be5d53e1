package middleware

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags the request's goroutine with pprof labels for the bound tenant
// and the matched route. It must run after TenantMiddleware.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		tenantID := ""
		if scope, ok := tenancy.FromContext(c.Request.Context()); ok {
			tenantID = scope.TenantID().String()
		}

		telemetry.WithProfilingLabels(c.Request.Context(), tenantID, c.Request.Method+" "+route, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
