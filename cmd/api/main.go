package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/offering-registry/internal/api/http"
	"github.com/spec-kit/offering-registry/internal/api/http/handlers"
	"github.com/spec-kit/offering-registry/internal/config"
	"github.com/spec-kit/offering-registry/internal/events"
	"github.com/spec-kit/offering-registry/internal/observability"
	"github.com/spec-kit/offering-registry/internal/persistence"
	"github.com/spec-kit/offering-registry/internal/repository"
	"github.com/spec-kit/offering-registry/internal/service"
	"github.com/spec-kit/offering-registry/internal/web"
	"github.com/spec-kit/offering-registry/internal/worker"
)

const notificationWorkers = 2

// store is the relational backend selected by STORE_DRIVER.
type store struct {
	reference repository.ReferenceRepository
	offerings repository.OfferingStore
	pinger    handlers.Pinger
	migrate   func(context.Context) error
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	if cfg.Store.RunMigrations {
		if err := st.migrate(ctx); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	notifier := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), 256, logger)
	notificationService := service.NewNotificationService(notifier, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, notifier, notificationWorkers)

	referenceService := service.NewReferenceService(service.ReferenceDependencies{
		Repo:     st.reference,
		Cache:    redis,
		CacheTTL: cfg.Catalog.CacheTTL(),
		Logger:   logger,
		Metrics:  metrics,
	})
	offeringService := service.NewOfferingService(service.OfferingDependencies{
		Store:            st.offerings,
		Dispatcher:       notifier,
		Logger:           logger,
		Metrics:          metrics,
		RejectDuplicates: cfg.Offering.RejectDuplicates(),
	})

	engine, err := web.NewEngine()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		Views:       engine,
		ViewsLayout: web.Layout,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, st.pinger, redis),
		Offerings: handlers.NewOfferingsHandler(offeringService),
		Catalog:   handlers.NewCatalogHandler(referenceService),
		AdminPage: handlers.NewAdminPageHandler(offeringService, referenceService, logger),
		Metrics:   metrics,
	})

	logger.Info("starting server",
		zap.String("addr", cfg.App.Addr()),
		zap.String("store", cfg.Store.Driver),
		zap.String("duplicate_policy", cfg.Offering.DuplicatePolicy),
		zap.Bool("catalog_cache", redis.Enabled()))

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if err := notifier.Stop(shutdownCtx); err != nil {
		logger.Warn("notification backlog not drained", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		pool := pg.PoolHandle()
		return &store{
			reference: repository.NewReferenceRepository(pool),
			offerings: repository.NewOfferingRepository(pool),
			pinger:    pg,
			migrate:   pg.Migrate,
			close:     pg.Close,
		}, nil
	default:
		lite, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return &store{
			reference: repository.NewSQLiteReferenceRepository(lite.DB),
			offerings: repository.NewSQLiteOfferingRepository(lite.DB),
			pinger:    lite,
			migrate:   lite.Migrate,
			close:     lite.Close,
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
