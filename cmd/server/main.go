package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appswap "github.com/phoneshop/backend/internal/application/swap"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/infrastructure/cache"
	"github.com/phoneshop/backend/internal/infrastructure/config"
	"github.com/phoneshop/backend/internal/infrastructure/event"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/phoneshop/backend/internal/infrastructure/migration"
	"github.com/phoneshop/backend/internal/infrastructure/persistence"
	"github.com/phoneshop/backend/internal/infrastructure/scheduler"
	"github.com/phoneshop/backend/internal/infrastructure/telemetry"
	"github.com/phoneshop/backend/internal/interfaces/http/handler"
	"github.com/phoneshop/backend/internal/interfaces/http/middleware"
	"github.com/phoneshop/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Phone Shop Swap API
//	@version		1.0
//	@description	Trade-in swaps and deferred profit settlement
//	@BasePath		/api/v1

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting swap service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := ensureSchema(db, cfg.Database, log); err != nil {
		log.Fatal("Database schema check failed", zap.Error(err))
	}

	// Repositories
	swapRepo := persistence.NewGormSwapRepository(db.DB)
	tradeInRepo := persistence.NewGormTradeInItemRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	catalog := persistence.NewGormCatalogGateway(db.DB)
	salesLedger := persistence.NewGormSalesLedger(db.DB)
	customers := persistence.NewGormCustomerRegistry(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Application services
	swapMetrics, err := telemetry.NewSwapMetrics(meter)
	if err != nil {
		log.Fatal("Failed to initialize swap metrics", zap.Error(err))
	}

	settlementService := appswap.NewSettlementService(settlementRepo, salesLedger, cfg.Settlement.MaxResolutionAttempts, log)
	settlementService.SetEventPublisher(eventBus)
	settlementService.SetMetrics(swapMetrics)

	swapService := appswap.NewSwapService(
		swapRepo,
		tradeInRepo,
		settlementRepo,
		customers,
		txScope,
		appswap.SwapServiceConfig{
			CostFallbackRatio: decimal.NewFromFloat(cfg.Swap.CostFallbackRatio),
			CodeMaxAttempts:   cfg.Swap.CodeMaxAttempts,
		},
		log,
	)
	swapService.SetEventPublisher(eventBus)
	swapService.SetMetrics(swapMetrics)

	tradeInService := appswap.NewTradeInService(tradeInRepo, swapRepo, settlementService, log)
	tradeInService.SetEventPublisher(eventBus)

	relist := event.NewIdempotentHandler(
		appswap.NewTradeInRelistHandler(tradeInRepo, catalog, log),
		idempotencyStore,
		shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true},
		log,
	)
	eventBus.Subscribe(relist, relist.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Settlement retry
	var retryScheduler *scheduler.SettlementRetryScheduler
	if cfg.Settlement.RetryEnabled {
		retryScheduler, err = scheduler.NewSettlementRetryScheduler(scheduler.SettlementRetryConfig{
			Interval:    cfg.Settlement.RetryInterval,
			MaxInterval: cfg.Settlement.RetryMaxInterval,
			BatchSize:   cfg.Settlement.RetryBatchSize,
		}, settlementService, log)
		if err != nil {
			log.Fatal("Invalid settlement retry configuration", zap.Error(err))
		}
		if err := retryScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start settlement retry scheduler", zap.Error(err))
		}
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TracingEnabled: tracerProvider.IsEnabled(),
		TracerProvider: tracerProvider.Provider(),
		Meter:          meter,
		Logger:         log,
	})

	healthHandler := handler.NewHealthHandler(db, log)
	engine.GET("/health", healthHandler.Check)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.Tenant(middleware.TenantConfig{Logger: log}),
		middleware.SpanAttributes(),
	)
	r.Register(handler.NewSwapHandler(swapService, log)).
		Register(handler.NewTradeInHandler(tradeInService, log)).
		Register(handler.NewSettlementHandler(settlementService, log))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if retryScheduler != nil {
		if err := retryScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Settlement retry scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// ensureSchema refuses to serve on a dirty or outdated schema, applying
// pending migrations first when auto_migrate is set
func ensureSchema(db *persistence.Database, cfg config.DatabaseConfig, log *zap.Logger) error {
	expected, err := migration.LatestVersion(cfg.MigrationsPath)
	if err != nil {
		return err
	}
	sqlDB, err := db.SQLDB()
	if err != nil {
		return err
	}
	migrator, err := migration.New(sqlDB, cfg.MigrationsPath, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool.
	return migration.EnsureSchema(migrator, expected, cfg.AutoMigrate, log)
}
