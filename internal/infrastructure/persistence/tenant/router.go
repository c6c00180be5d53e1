// Package tenant routes every storage operation to the namespace of the tenant
// bound to the request context.
//
// Each namespace gets its own compiled *gorm.DB: a naming strategy that confines
// tables to the namespace plus its own schema cache, callbacks and plugins. All
// compiled models share the base connection pool. Compiled models are kept in a
// bounded LRU keyed by ModelKey; concurrent first access for a namespace
// compiles once.
//
// Usage:
//
//	router, _ := tenant.NewRouter(baseDB, tenant.PostgresDialector, cfg, persistence.MigrateNamespace, zapLogger)
//	db, err := router.DB(ctx) // ctx must carry a tenancy scope
package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/tenancy"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultContextType identifies the ledger model set in cache keys
const DefaultContextType = "ledger"

// ErrRouterClosed is returned after Close
var ErrRouterClosed = errors.New("tenant router is closed")

// ModelKey identifies one compiled model
type ModelKey struct {
	ContextType string
	Namespace   string
	DesignTime  bool
}

// String renders the key for logs and singleflight
func (k ModelKey) String() string {
	return fmt.Sprintf("%s/%s/design=%t", k.ContextType, k.Namespace, k.DesignTime)
}

// Model is a compiled, namespace-confined gorm handle
type Model struct {
	Key        ModelKey
	DB         *gorm.DB
	CompiledAt time.Time
}

// Migrator prepares the tables of a freshly compiled model
type Migrator func(ctx context.Context, db *gorm.DB, namespace string) error

// Config configures the router
type Config struct {
	Strategy    Strategy
	CacheSize   int
	AutoMigrate bool
	ContextType string
	Logger      gormlogger.Interface
	Plugins     []gorm.Plugin
}

// Stats reports model cache activity
type Stats struct {
	Hits      uint64
	Misses    uint64
	Compiles  uint64
	Evictions uint64
	Cached    int
}

// Router resolves the compiled model of the tenant bound to a context
type Router struct {
	base     *gorm.DB
	dialect  DialectorFactory
	cfg      Config
	migrate  Migrator
	cache    *lru.Cache[ModelKey, *Model]
	group    singleflight.Group
	log      *zap.Logger
	closed   atomic.Bool
	hits     atomic.Uint64
	misses   atomic.Uint64
	compiles atomic.Uint64
	evicted  atomic.Uint64
}

// NewRouter creates a router over base. migrate runs once per compiled namespace
// when cfg.AutoMigrate is set, and always for design-time models.
func NewRouter(base *gorm.DB, dialect DialectorFactory, cfg Config, migrate Migrator, log *zap.Logger) (*Router, error) {
	if base == nil {
		return nil, errors.New("tenant router: base db is required")
	}
	if !cfg.Strategy.IsValid() {
		return nil, fmt.Errorf("tenant router: unknown namespace strategy %q", cfg.Strategy)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.ContextType == "" {
		cfg.ContextType = DefaultContextType
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Router{
		base:    base,
		dialect: dialect,
		cfg:     cfg,
		migrate: migrate,
		log:     log.Named("tenant-router"),
	}
	cache, err := lru.NewWithEvict[ModelKey, *Model](cfg.CacheSize, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("tenant router: %w", err)
	}
	r.cache = cache

	r.log.Info("tenant router started",
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("cache_size", cfg.CacheSize),
		zap.Bool("auto_migrate", cfg.AutoMigrate),
	)
	return r, nil
}

// DB returns the tenant's model bound to ctx. It fails with
// shared.ErrTenantRequired when no tenant is bound; it never falls back to the
// shared namespace.
func (r *Router) DB(ctx context.Context) (*gorm.DB, error) {
	scope, ok := tenancy.FromContext(ctx)
	if !ok {
		return nil, shared.ErrTenantRequired
	}
	m, err := r.Model(ctx, r.key(scope.Namespace(), false))
	if err != nil {
		return nil, err
	}
	return m.DB.WithContext(ctx), nil
}

// SharedDB returns the model of the public namespace, used only for data that
// is not tenant scoped.
func (r *Router) SharedDB(ctx context.Context) (*gorm.DB, error) {
	m, err := r.Model(ctx, r.key(tenancy.PublicNamespace, false))
	if err != nil {
		return nil, err
	}
	return m.DB.WithContext(ctx), nil
}

// Provision compiles and migrates the design-time model of a tenant namespace
// ahead of first traffic. The design-time model is not kept after the call.
func (r *Router) Provision(ctx context.Context, tenantID string) (string, error) {
	ctx, err := tenancy.BindString(ctx, tenantID)
	if err != nil {
		return "", err
	}
	scope, _ := tenancy.FromContext(ctx)
	key := r.key(scope.Namespace(), true)

	m, err := r.compile(ctx, key)
	if err != nil {
		return "", err
	}
	r.log.Info("tenant namespace provisioned", zap.String("namespace", key.Namespace))
	return m.Key.Namespace, nil
}

// Model returns the compiled model for key, compiling it on first use
func (r *Router) Model(ctx context.Context, key ModelKey) (*Model, error) {
	if r.closed.Load() {
		return nil, ErrRouterClosed
	}
	if m, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return m, nil
	}
	r.misses.Add(1)

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		// Another caller may have finished compiling while we waited to enter.
		if m, ok := r.cache.Peek(key); ok {
			return m, nil
		}
		m, err := r.compile(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		r.cache.Add(key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

// Stats returns a snapshot of cache counters
func (r *Router) Stats() Stats {
	return Stats{
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		Compiles:  r.compiles.Load(),
		Evictions: r.evicted.Load(),
		Cached:    r.cache.Len(),
	}
}

// Invalidate drops the compiled model of a namespace
func (r *Router) Invalidate(namespace string) bool {
	return r.cache.Remove(r.key(namespace, false))
}

// Close drops all compiled models. The base pool is owned by the caller.
func (r *Router) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.cache.Purge()
}

func (r *Router) key(namespace string, designTime bool) ModelKey {
	return ModelKey{ContextType: r.cfg.ContextType, Namespace: namespace, DesignTime: designTime}
}

func (r *Router) compile(ctx context.Context, key ModelKey) (*Model, error) {
	start := time.Now()

	pool, err := r.base.DB()
	if err != nil {
		return nil, fmt.Errorf("tenant router: base pool: %w", err)
	}

	logger := r.cfg.Logger
	if logger == nil {
		logger = r.base.Config.Logger
	}
	db, err := gorm.Open(r.dialect(pool), &gorm.Config{
		NamingStrategy:         r.cfg.Strategy.Namer(key.Namespace),
		Logger:                 logger,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("compile model %s: %w", key, err)
	}
	for _, p := range r.cfg.Plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("compile model %s: plugin %s: %w", key, p.Name(), err)
		}
	}

	if err := r.cfg.Strategy.Prepare(ctx, db, key.Namespace); err != nil {
		return nil, fmt.Errorf("prepare namespace %s: %w", key.Namespace, err)
	}
	if r.migrate != nil && (r.cfg.AutoMigrate || key.DesignTime) {
		if err := r.migrate(ctx, db.WithContext(ctx), key.Namespace); err != nil {
			return nil, fmt.Errorf("migrate namespace %s: %w", key.Namespace, err)
		}
	}

	r.compiles.Add(1)
	r.log.Info("tenant model compiled",
		zap.String("namespace", key.Namespace),
		zap.Bool("design_time", key.DesignTime),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Model{Key: key, DB: db, CompiledAt: time.Now()}, nil
}

func (r *Router) onEvict(key ModelKey, _ *Model) {
	r.evicted.Add(1)
	r.log.Info("tenant model evicted", zap.String("namespace", key.Namespace))
}
