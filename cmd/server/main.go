package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cashapp "github.com/erp/ledgercore/internal/application/cash"
	docapp "github.com/erp/ledgercore/internal/application/document"
	"github.com/erp/ledgercore/internal/domain/cash"
	"github.com/erp/ledgercore/internal/infrastructure/auth"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/event"
	"github.com/erp/ledgercore/internal/infrastructure/lock"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/erp/ledgercore/internal/infrastructure/telemetry"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/erp/ledgercore/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry: traces, metrics and the zap -> OTLP log bridge
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	logProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log provider", zap.Error(err))
	}
	defer shutdown(log, "log provider", logProvider.Shutdown)
	log = logProvider.Bridge(log)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)
	meter := meterProvider.Meter("ledgercore")

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilerUser,
		BasicAuthPassword: cfg.Telemetry.ProfilerPassword,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
		ProfileMutex:      true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	pool, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get connection pool", zap.Error(err))
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	tenants, err := tenant.NewRouter(db.DB, db.Dialector(), tenant.Config{
		Strategy:    tenant.Strategy(cfg.Tenancy.NamespaceStrategy),
		CacheSize:   cfg.Tenancy.ModelCacheSize,
		AutoMigrate: cfg.Tenancy.AutoMigrate,
		Logger:      gormLog,
		Plugins: telemetry.DBTracingPlugins(telemetry.DBTracingConfig{
			Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL: cfg.Telemetry.DBLogFullSQL,
			DBSystem:   dbSystem,
		}, log),
	}, persistence.MigrateNamespace, log)
	if err != nil {
		log.Fatal("Failed to initialize tenant router", zap.Error(err))
	}
	defer tenants.Close()

	registration, err := telemetry.RegisterRouterMetrics(meter, tenants, pool)
	if err != nil {
		log.Fatal("Failed to register router metrics", zap.Error(err))
	}
	defer func() {
		_ = registration.Unregister()
	}()

	// Repositories
	uow := persistence.NewGormUnitOfWork(tenants)
	definitionRepo := persistence.NewGormDefinitionRepository(tenants)
	headerRepo := persistence.NewGormHeaderRepository(tenants)
	registryRepo := persistence.NewGormRegistryRepository(tenants)
	registerRepo := persistence.NewGormRegisterRepository(tenants)
	cashierRepo := persistence.NewGormCashierRepository(tenants)
	sessionRepo := persistence.NewGormSessionRepository(tenants)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	varianceAlerts := cashapp.NewVarianceAlertHandler(ledgerMetrics)
	eventBus.Subscribe(varianceAlerts)
	log.Info("Event handlers registered",
		zap.Strings("variance_alert_events", varianceAlerts.EventTypes()),
	)

	// Application services
	definitionService := docapp.NewDefinitionService(definitionRepo, docapp.NumberingOptions{
		MaxRetries:   cfg.Numbering.MaxRetries,
		RetryBackoff: cfg.Numbering.RetryBackoff,
		LockTTL:      cfg.Numbering.LockTTL,
	})
	definitionService.SetLedgerMetrics(ledgerMetrics)
	definitionService.SetEventPublisher(eventBus)

	if cfg.Numbering.LockBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = client.Close()
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		cancel()
		definitionService.SetLocker(lock.NewRedisLocker(client, "ledger:numbering"))
		log.Info("Numbering lock enabled", zap.String("backend", "redis"), zap.Duration("ttl", cfg.Numbering.LockTTL))
	}

	documentService := docapp.NewDocumentService(definitionRepo, headerRepo, registryRepo, definitionService, uow)
	documentService.SetLedgerMetrics(ledgerMetrics)
	documentService.SetEventPublisher(eventBus)

	policy, err := cash.NewVariancePolicy(cfg.Cash.VarianceWarningThreshold, cfg.Cash.VarianceCriticalThreshold)
	if err != nil {
		log.Fatal("Invalid cash variance policy", zap.Error(err))
	}
	sessionService := cashapp.NewSessionService(registerRepo, cashierRepo, sessionRepo, uow, policy)
	sessionService.SetLedgerMetrics(ledgerMetrics)
	sessionService.SetEventPublisher(eventBus)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracing.ServiceName = cfg.Telemetry.ServiceName
	}

	engine := router.NewEngine(router.Dependencies{
		Logger:       log,
		HTTP:         cfg.HTTP,
		JWT:          auth.NewJWTService(cfg.JWT),
		Definitions:  definitionService,
		Documents:    documentService,
		Sessions:     sessionService,
		Cashiers:     cashapp.NewCashierResolver(cashierRepo),
		DB:           pool,
		Meter:        meter,
		Tracing:      tracing,
		TenantHeader: cfg.Tenancy.HeaderFallback,
		Profiling:    profiler.IsEnabled(),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
