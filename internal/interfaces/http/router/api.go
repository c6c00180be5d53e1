package router

import (
	cashapp "github.com/erp/ledgercore/internal/application/cash"
	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/erp/ledgercore/internal/infrastructure/auth"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/interfaces/http/handler"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dependencies are the services and settings the HTTP API is built from
type Dependencies struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	JWT         *auth.JWTService
	Definitions *docapp.DefinitionService
	Documents   *docapp.DocumentService
	Sessions    *cashapp.SessionService
	Cashiers    middleware.CashierResolver
	// DB backs the readiness probe; may be nil
	DB handler.Pinger
	// Meter enables HTTP metrics when non-nil
	Meter   metric.Meter
	Tracing middleware.TracingConfig
	// TenantHeader accepts X-Tenant-ID when the token carries no tenant
	TenantHeader bool
	// Profiling adds tenant and route pprof labels to each request
	Profiling bool
}

// NewEngine builds the gin engine serving the ledger API
func NewEngine(deps Dependencies) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.HTTP.TrustedProxies)
	}

	cors := middleware.DefaultCORSConfig()
	if len(deps.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = deps.HTTP.CORSAllowOrigins
	}
	if len(deps.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = deps.HTTP.CORSAllowMethods
	}
	if len(deps.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = deps.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.TracingWithConfig(deps.Tracing),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(deps.Meter),
		logger.GinMiddleware(deps.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
	)
	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}
	engine.Use(middleware.Timeout(deps.HTTP.RequestTimeout))

	system := handler.NewSystemHandler(deps.DB)
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.HeaderEnabled = deps.TenantHeader
	tenantCfg.Logger = deps.Logger

	r := NewRouter(engine, WithMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: deps.JWT,
			Logger:     deps.Logger,
		}),
		middleware.TenantMiddleware(tenantCfg),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(deps.Profiling),
	))

	definitions := handler.NewDefinitionHandler(deps.Definitions)
	r.Register(NewDomainGroup("document-definitions", "/document-definitions").
		POST("", definitions.Create).
		GET("", definitions.List).
		GET("/:id", definitions.Get).
		PUT("/:id/configuration", definitions.UpdateConfiguration).
		POST("/:id/deactivate", definitions.Deactivate))

	documents := handler.NewDocumentHandler(deps.Documents)
	r.Register(NewDomainGroup("documents", "/documents").
		POST("", documents.Create).
		GET("", documents.List).
		GET("/by-number/:number", documents.GetByNumber).
		GET("/:id", documents.Get).
		POST("/:id/lines", documents.AddLine).
		POST("/:id/activate", documents.Activate).
		POST("/:id/cancel", documents.Cancel).
		POST("/:id/rebuild-registry", documents.RebuildRegistry))

	registry := handler.NewRegistryHandler(deps.Documents)
	r.Register(NewDomainGroup("transaction-registry", "/transaction-registry").
		GET("", registry.List).
		GET("/summary", registry.Summary))

	cash := handler.NewCashHandler(deps.Sessions)
	actingCashier := middleware.CashierMiddleware(deps.Cashiers)
	r.Register(NewDomainGroup("cash", "/cash").
		POST("/registers", cash.CreateRegister).
		GET("/registers", cash.ListRegisters).
		POST("/cashiers", cash.CreateCashier).
		POST("/sessions", actingCashier, cash.OpenSession).
		GET("/sessions", cash.ListSessions).
		GET("/sessions/:id", cash.GetSession).
		POST("/sessions/:id/movements", actingCashier, cash.AddMovement).
		POST("/sessions/:id/close-request", actingCashier, cash.RequestClose).
		POST("/sessions/:id/close-confirm", actingCashier, cash.ConfirmClose).
		GET("/sessions/:id/reconciliation", cash.Reconciliation))

	r.Setup()
	return engine
}
