package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	inventoryapp "github.com/retailops/backend/internal/application/inventory"
	replenishmentapp "github.com/retailops/backend/internal/application/replenishment"
	transferapp "github.com/retailops/backend/internal/application/transfer"
	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/infrastructure/config"
	"github.com/retailops/backend/internal/infrastructure/event"
	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/retailops/backend/internal/infrastructure/telemetry"
	"github.com/retailops/backend/internal/interfaces/http/handler"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
	"github.com/retailops/backend/internal/interfaces/http/router"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting retailops backend",
		zap.String("app", cfg.App.Name),
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	providerCtx, providerCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer providerCancel()

	tracerProvider, err := telemetry.NewTracerProvider(providerCtx, telemetry.TracerConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if serr := tracerProvider.Shutdown(context.Background()); serr != nil {
			log.Warn("tracer provider shutdown failed", zap.Error(serr))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(providerCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if serr := meterProvider.Shutdown(context.Background()); serr != nil {
			log.Warn("meter provider shutdown failed", zap.Error(serr))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", zap.Error(cerr))
		}
	}()
	log.Info("database connected")

	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		return err
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}
	if err := db.DB.Use(telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig())); err != nil {
		return err
	}

	topology, err := buildTopology(cfg.Topology)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cfg.Replenishment)
	if err != nil {
		return err
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event plumbing. The in-process bus dispatches stock level changes to
	// the replenishment trigger engine; redelivered events are dropped
	// through the idempotency store.
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	}()

	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Event.RequireRedis),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := idempotencyStore.Close(); cerr != nil {
			log.Warn("error closing idempotency store", zap.Error(cerr))
		}
	}()

	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
	}

	// Repositories
	stockRepo := persistence.NewGormStockRecordRepository(db.DB)
	transferRepo := persistence.NewGormTransferOrderRepository(db.DB)
	requestRepo := persistence.NewGormRequestRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	scheduleRepo := persistence.NewGormScheduleRepository(db.DB)
	logRepo := persistence.NewGormLogRepository(db.DB)

	// Application services
	ledgerService := inventoryapp.NewLedgerService(
		stockRepo,
		persistence.NewGormInventoryTransactionScope(db.DB),
		topology,
		log,
	)
	ledgerService.SetEventPublisher(bus)
	ledgerService.SetBusinessMetrics(businessMetrics)
	ledgerService.SetDefaultCatalog(seedCatalog(cfg.Topology.Catalog))

	transferService := transferapp.NewTransferService(
		persistence.NewGormTransferTransactionScope(db.DB),
		transferRepo,
		scheduleRepo,
		logRepo,
		topology,
		log,
	)
	transferService.SetEventPublisher(bus)
	transferService.SetBusinessMetrics(businessMetrics)

	requestService := replenishmentapp.NewRequestService(requestRepo, alertRepo, log)

	triggerHandler := replenishmentapp.NewTriggerHandler(
		topology,
		transferRepo,
		scheduleRepo,
		requestRepo,
		alertRepo,
		policy,
		log,
	).WithIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: cfg.Event.IdempotencyEnabled,
	})
	triggerHandler.SetBusinessMetrics(businessMetrics)
	bus.Subscribe(triggerHandler, triggerHandler.EventTypes()...)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return err
		}
	}
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(),
	)

	router.NewRouter(engine).
		Register(handler.NewInventoryHandler(ledgerService)).
		Register(handler.NewTransferHandler(transferService)).
		Register(handler.NewReplenishmentHandler(requestService)).
		Setup()

	// Health endpoints live outside the versioned API group
	handler.NewSystemHandler(db, version).RegisterRoutes(engine.Group(""))

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}

// buildTopology converts the configured location table into the validated
// domain topology.
func buildTopology(cfg config.TopologyConfig) (*inventory.Topology, error) {
	locations := make([]inventory.Location, 0, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		locations = append(locations, inventory.Location{
			ID:              loc.ID,
			Name:            loc.Name,
			Class:           inventory.LocationClass(loc.Class),
			Region:          loc.Region,
			ParentWarehouse: loc.ParentWarehouse,
			Capacity:        decimal.NewFromFloat(loc.Capacity),
		})
	}
	return inventory.NewTopology(locations)
}

// buildPolicy converts the replenishment config block into the trigger
// engine's threshold policy.
func buildPolicy(cfg config.ReplenishmentConfig) (replenishmentapp.ThresholdPolicy, error) {
	policy := replenishmentapp.ThresholdPolicy{
		StoreFloorMode:  replenishmentapp.StoreFloorMode(cfg.StoreFloorMode),
		StoreFloorUnits: decimal.NewFromInt(cfg.StoreFloorUnits),
		StoreFloorRatio: decimal.NewFromFloat(cfg.StoreFloorRatio),
		StoreAction:     replenishmentapp.StoreAction(cfg.StoreAction),
		WarehouseRatio:  decimal.NewFromFloat(cfg.WarehouseRatio),
		DangerRatio:     decimal.NewFromFloat(cfg.DangerRatio),
		TargetFillRatio: decimal.NewFromFloat(cfg.TargetFillRatio),
		DeliveryLead:    cfg.DeliveryLead,
	}
	if err := policy.Validate(); err != nil {
		return replenishmentapp.ThresholdPolicy{}, err
	}
	return policy, nil
}

func seedCatalog(products []config.ProductConfig) []inventoryapp.ProductSeed {
	seeds := make([]inventoryapp.ProductSeed, 0, len(products))
	for _, p := range products {
		seeds = append(seeds, inventoryapp.ProductSeed{SKU: p.SKU, Name: p.Name})
	}
	return seeds
}
