package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/auth"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		username string
		ttl      time.Duration
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&username, "username", "ops", "Username claim for issued tokens")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Lifetime of issued tokens")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// token does not need a database
	if command == "token" {
		if len(args) < 3 {
			log.Fatal("Usage: migrate token <tenant-id> <user-id>")
		}
		issueToken(log, cfg, args[1], args[2], username, ttl)
		return
	}

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	tenants, err := tenant.NewRouter(db.DB, db.Dialector(), tenant.Config{
		Strategy:    tenant.Strategy(cfg.Tenancy.NamespaceStrategy),
		CacheSize:   1,
		AutoMigrate: true,
	}, persistence.MigrateNamespace, log)
	if err != nil {
		log.Fatal("Failed to initialize tenant router", zap.Error(err))
	}
	defer tenants.Close()
	directory := persistence.NewGormTenantDirectory(tenants)

	ctx := context.Background()
	switch command {
	case "provision":
		if len(args) < 2 {
			log.Fatal("At least one tenant id required. Usage: migrate provision <tenant-id>...")
		}
		for _, raw := range args[1:] {
			tenantID, err := uuid.Parse(raw)
			if err != nil {
				log.Fatal("Invalid tenant id", zap.String("tenant_id", raw), zap.Error(err))
			}
			namespace, err := tenants.Provision(ctx, tenantID.String())
			if err != nil {
				log.Fatal("Provisioning failed", zap.String("tenant_id", raw), zap.Error(err))
			}
			if err := directory.Register(ctx, tenantID, namespace); err != nil {
				log.Fatal("Failed to record tenant", zap.String("tenant_id", raw), zap.Error(err))
			}
			log.Info("Tenant provisioned",
				zap.String("tenant_id", tenantID.String()),
				zap.String("namespace", namespace),
			)
		}

	case "list":
		entries, err := directory.List(ctx)
		if err != nil {
			log.Fatal("Failed to list tenants", zap.Error(err))
		}
		if len(entries) == 0 {
			log.Info("No tenants provisioned")
			return
		}
		log.Info("Provisioned tenants", zap.Int("count", len(entries)))
		for _, e := range entries {
			fmt.Printf("  - %s  %s  %s\n", e.TenantID, e.Namespace, e.ProvisionedAt.Format(time.RFC3339))
		}

	case "upgrade":
		// Re-run auto-migration for every recorded tenant after a schema change
		entries, err := directory.List(ctx)
		if err != nil {
			log.Fatal("Failed to list tenants", zap.Error(err))
		}
		for _, e := range entries {
			if _, err := tenants.Provision(ctx, e.TenantID.String()); err != nil {
				log.Fatal("Upgrade failed", zap.String("tenant_id", e.TenantID.String()), zap.Error(err))
			}
		}
		log.Info("Tenants upgraded", zap.Int("count", len(entries)))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func issueToken(log *zap.Logger, cfg *config.Config, rawTenant, rawUser, username string, ttl time.Duration) {
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		log.Fatal("Invalid tenant id", zap.Error(err))
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		log.Fatal("Invalid user id", zap.Error(err))
	}
	token, err := auth.NewJWTService(cfg.JWT).IssueAccessToken(tenantID, userID, username, ttl)
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}
	fmt.Println(token)
}

func printUsage() {
	fmt.Println(`Ledger tenant provisioning tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  provision <tenant-id>...     Create and migrate tenant namespaces
  list                         List provisioned tenants
  upgrade                      Re-run migrations for every provisioned tenant
  token <tenant-id> <user-id>  Issue an access token (development)

Flags:
  -log-level string   Log level (debug, info, warn, error) (default "info")
  -username string    Username claim for issued tokens (default "ops")
  -ttl duration       Lifetime of issued tokens (default 1h)

Environment variables:
  LEDGER_DATABASE_DRIVER, LEDGER_DATABASE_HOST, LEDGER_DATABASE_PORT,
  LEDGER_DATABASE_USER, LEDGER_DATABASE_PASSWORD, LEDGER_DATABASE_DBNAME,
  LEDGER_TENANCY_NAMESPACE_STRATEGY, LEDGER_JWT_SECRET`)
}
