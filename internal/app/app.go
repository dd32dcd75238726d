// Package app wires the engine together: configuration, logging,
// persistence, the event bus, and the application services. Front ends
// embed an App instead of assembling the pieces themselves.
package app

import (
	"context"

	"go.uber.org/zap"

	catalogapp "github.com/omnitrack/backend/internal/application/catalog"
	checkoutapp "github.com/omnitrack/backend/internal/application/checkout"
	inventoryapp "github.com/omnitrack/backend/internal/application/inventory"
	ordersapp "github.com/omnitrack/backend/internal/application/orders"
	reportapp "github.com/omnitrack/backend/internal/application/report"
	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/infrastructure/config"
	"github.com/omnitrack/backend/internal/infrastructure/event"
	"github.com/omnitrack/backend/internal/infrastructure/logger"
	"github.com/omnitrack/backend/internal/infrastructure/persistence"
	"github.com/omnitrack/backend/internal/infrastructure/telemetry"
)

// App is the assembled engine.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *persistence.Database
	EventBus *event.InMemoryEventBus
	Ledger   *inventory.StockLedger

	Products  *catalogapp.ProductService
	Checkout  *checkoutapp.CheckoutService
	Orders    *ordersapp.OrderService
	Inventory *inventoryapp.InventoryService
	Reports   *reportapp.ReportService

	meterProvider *telemetry.MeterProvider
}

// New builds an App from the given configuration. Pass a nil config to
// load it from file and environment.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Starting OmniTrack engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	meterProvider, err := telemetry.NewMeterProvider(telemetry.MetricsConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	transactionRepo := persistence.NewGormStockTransactionRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	ledger := inventory.NewStockLedger(productRepo, transactionRepo, eventBus, log)

	productService := catalogapp.NewProductService(productRepo, log).
		WithDefaultLowStockThreshold(cfg.Checkout.DefaultLowStockLevel)
	productService.SetEventPublisher(eventBus)

	checkoutService := checkoutapp.NewCheckoutService(productRepo, orderRepo, ledger, log).
		WithMaxCartLines(cfg.Checkout.MaxCartLines)
	checkoutService.SetEventPublisher(eventBus)

	orderService := ordersapp.NewOrderService(orderRepo, ledger, log)
	orderService.SetEventPublisher(eventBus)

	inventoryService := inventoryapp.NewInventoryService(ledger, productRepo, transactionRepo)
	reportService := reportapp.NewReportService(orderRepo)

	eventBus.Subscribe(inventoryapp.NewStockBelowThresholdHandler(log))

	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("omnitrack"), log)
		if err != nil {
			_ = meterProvider.Shutdown(context.Background())
			_ = db.Close()
			return nil, err
		}
		eventBus.Subscribe(telemetry.NewEventHandler(businessMetrics))
	}

	return &App{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		EventBus:      eventBus,
		Ledger:        ledger,
		Products:      productService,
		Checkout:      checkoutService,
		Orders:        orderService,
		Inventory:     inventoryService,
		Reports:       reportService,
		meterProvider: meterProvider,
	}, nil
}

// Close releases the App's resources.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return firstErr
}
