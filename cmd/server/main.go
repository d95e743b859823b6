package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	accountshandler "eanft/internal/accounts/handler"
	accountsmetrics "eanft/internal/accounts/metrics"
	"eanft/internal/accounts/authz"
	accountsservice "eanft/internal/accounts/service"
	accountsstore "eanft/internal/accounts/store"
	"eanft/internal/audit"
	"eanft/internal/catalog"
	cataloghandler "eanft/internal/catalog/handler"
	httpapi "eanft/internal/http"
	"eanft/internal/ledger"
	"eanft/internal/minting"
	mintinghandler "eanft/internal/minting/handler"
	"eanft/internal/platform/config"
	"eanft/internal/platform/httpserver"
	"eanft/internal/platform/logger"
	"eanft/internal/platform/metrics"
	"eanft/internal/platform/postgres"
	platformredis "eanft/internal/platform/redis"
	"eanft/internal/platform/tracing"
)

const auditQueueSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	applyFlags(&cfg, os.Args[1:])

	log := logger.New(cfg.Server.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// applyFlags overlays command-line flags on the environment configuration.
// Only flags that were explicitly set win.
func applyFlags(cfg *config.Config, args []string) {
	fs := pflag.NewFlagSet("eanft", pflag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "HTTP listen address")
	logLevel := fs.String("log-level", cfg.Server.LogLevel.String(), "log level (debug, info, warn, error)")
	nodeURL := fs.String("node-url", cfg.Ledger.NodeURL, "NEAR JSON-RPC endpoint")
	contractID := fs.String("contract-id", cfg.Ledger.ContractID, "donation NFT contract account")
	signer := fs.String("signer-account-id", cfg.Ledger.SignerAccountID, "account that signs change calls")
	ledgerTimeout := fs.Duration("ledger-timeout", cfg.Ledger.Timeout, "timeout applied to every ledger call")
	adminID := fs.String("admin-account-id", cfg.Admin.AccountID, "account allowed to see the user listing")
	databaseURL := fs.String("database-url", cfg.Postgres.URL, "Postgres DSN; empty keeps accounts in memory")
	redisURL := fs.String("redis-url", cfg.Redis.URL, "Redis URL; empty disables the view cache")
	cacheTTL := fs.Duration("cache-ttl", cfg.Cache.TTL, "lifetime of cached ledger views")
	otlpEndpoint := fs.String("otlp-endpoint", cfg.Tracing.Endpoint, "OTLP/gRPC collector address; empty disables trace export")
	_ = fs.Parse(args)

	cfg.Server.Addr = *addr
	if fs.Changed("log-level") {
		var level slog.Level
		if err := level.UnmarshalText([]byte(*logLevel)); err == nil {
			cfg.Server.LogLevel = level
		}
	}
	cfg.Ledger.NodeURL = *nodeURL
	cfg.Ledger.ContractID = *contractID
	cfg.Ledger.SignerAccountID = *signer
	cfg.Ledger.Timeout = *ledgerTimeout
	cfg.Admin.AccountID = *adminID
	cfg.Postgres.URL = *databaseURL
	cfg.Redis.URL = *redisURL
	cfg.Cache.TTL = *cacheTTL
	cfg.Tracing.Endpoint = *otlpEndpoint
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.DefaultRegisterer
	healthChecks := map[string]httpapi.HealthCheck{}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("trace exporter shutdown failed", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		log.Info("exporting traces", "endpoint", cfg.Tracing.Endpoint, "sample_ratio", cfg.Tracing.SampleRatio)
	}

	ledgerClient, err := ledger.New(cfg.Ledger, ledger.WithLogger(log))
	if err != nil {
		return fmt.Errorf("ledger client: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	var accountStore accountsservice.AccountStore = accountsstore.NewInMemory()
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		defer db.Close()
		accountStore = accountsstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		healthChecks["postgres"] = func(ctx context.Context) error { return pingDB(ctx, db) }
		log.Info("using postgres account and audit stores")
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	catalogOpts := []catalog.Option{
		catalog.WithLogger(log),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	}
	if redisClient != nil {
		defer redisClient.Close()
		catalogOpts = append(catalogOpts, catalog.WithCache(catalog.NewRedisCache(redisClient.Client), cfg.Cache.TTL))
		healthChecks["redis"] = redisClient.Health
		log.Info("using redis view cache", "ttl", cfg.Cache.TTL)
	}

	publisher := audit.NewPublisher(auditStore, audit.WithQueue(auditQueueSize), audit.WithPublisherLogger(log))
	worker := audit.NewWorker(auditStore, publisher.Queue(), log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = worker.Run(ctx)
	}()

	accountMetrics := accountsmetrics.New(reg)
	accounts := accountsservice.New(accountStore,
		accountsservice.WithLogger(log),
		accountsservice.WithAuditPublisher(publisher),
		accountsservice.WithMetrics(accountMetrics),
	)
	gate := authz.New(cfg.Admin.AccountID, accountStore,
		authz.WithLogger(log),
		authz.WithAuditPublisher(publisher),
		authz.WithMetrics(accountMetrics),
	)

	catalogCfg := append(catalogOpts, catalog.WithAuditPublisher(publisher))
	templates := catalog.New(ledgerClient, cfg.Ledger.ContractID, catalogCfg...)
	orchestrator := minting.New(ledgerClient, cfg.Ledger.ContractID,
		minting.WithDonationCache(templates, cfg.Ledger.SignerAccountID),
		minting.WithLogger(log),
		minting.WithAuditPublisher(publisher),
		minting.WithMetrics(minting.NewMetrics(reg)),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        metrics.New(reg),
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   healthChecks,
		Handlers: []httpapi.RouteRegistrar{
			accountshandler.New(accounts, gate, log),
			cataloghandler.New(templates, log),
			mintinghandler.New(orchestrator, log),
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting eanft",
			"addr", cfg.Server.Addr,
			"contract_id", cfg.Ledger.ContractID,
			"node_url", cfg.Ledger.NodeURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-workerDone
	log.Info("server stopped")
	return nil
}

func pingDB(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
