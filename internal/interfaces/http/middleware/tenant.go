package middleware

import (
	"errors"
	"net/http"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tenant keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// HeaderEnabled accepts X-Tenant-ID when no token claim is present
	HeaderEnabled bool
	// SkipPaths are paths that don't require tenant context
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		SkipPaths:     []string{"/health", "/ready"},
	}
}

// TenantMiddleware binds the request's tenant to the request context.
// Extraction order: JWT claim, then X-Tenant-ID header. A header that
// disagrees with the token claim is rejected.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		raw := GetJWTTenantID(c)
		header := ""
		if cfg.HeaderEnabled {
			header = c.GetHeader(TenantHeaderKey)
		}
		if raw == "" {
			raw = header
		}
		if raw == "" {
			abortTenant(c, shared.ErrTenantRequired)
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			abortTenant(c, tenancy.ErrInvalidTenant)
			return
		}

		ctx, err := tenancy.Bind(c.Request.Context(), tenantID)
		if err == nil && header != "" && header != raw {
			var headerID uuid.UUID
			if headerID, err = uuid.Parse(header); err == nil {
				_, err = tenancy.Bind(ctx, headerID)
			} else {
				err = tenancy.ErrInvalidTenant
			}
		}
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Tenant binding rejected",
					zap.String("tenant_id", raw),
					zap.Error(err),
				)
			}
			abortTenant(c, err)
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortTenant(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDKey)
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.AbortWithStatusJSON(dto.StatusForDomainError(domainErr),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Tenant binding failed", requestID))
}

// GetTenantID returns the bound tenant ID string, or ""
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}
