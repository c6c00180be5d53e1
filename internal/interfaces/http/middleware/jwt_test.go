package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/auth"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, tenantID, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	token, err := svc.IssueAccessToken(tenantID, userID, "tester", ttl)
	require.NoError(t, err)
	return token
}

func setupJWTRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/protected", func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":     GetJWTUserID(c),
			"tenant_id":   GetJWTTenantID(c),
			"ctx_user_id": logger.GetUserID(c.Request.Context()),
			"username":    claims.Username,
		})
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	tenantID, userID := uuid.New(), uuid.New()
	r := setupJWTRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, svc, tenantID, userID, time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"`+userID.String())
	assert.Contains(t, w.Body.String(), `"ctx_user_id":"`+userID.String())
	assert.Contains(t, w.Body.String(), `"tenant_id":"`+tenantID.String())
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	svc := newTestJWTService()
	r := setupJWTRouter(svc)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "ERR_UNAUTHORIZED"},
		{"not bearer", "Basic abc", "ERR_UNAUTHORIZED"},
		{"empty token", BearerPrefix, "ERR_UNAUTHORIZED"},
		{"garbage token", BearerPrefix + "abc.def.ghi", "ERR_TOKEN_INVALID"},
		{"expired token", BearerPrefix + issueToken(t, svc, uuid.New(), uuid.New(), -time.Minute), "ERR_TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	r := setupJWTRouter(newTestJWTService())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetJWTClaims(c)
	assert.False(t, ok)
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTTenantID(c))
}
