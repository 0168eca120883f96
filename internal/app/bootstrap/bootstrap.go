package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	orderservice "quickcart/contexts/storefront/order-service"
	orderpostgres "quickcart/contexts/storefront/order-service/adapters/postgres"
	orderworkers "quickcart/contexts/storefront/order-service/application/workers"
	usersyncservice "quickcart/contexts/storefront/user-sync-service"
	userpostgres "quickcart/contexts/storefront/user-sync-service/adapters/postgres"
	userworkers "quickcart/contexts/storefront/user-sync-service/application/workers"
	"quickcart/internal/platform/config"
	"quickcart/internal/platform/db"
	"quickcart/internal/platform/httpserver"
	"quickcart/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server *httpserver.Server
	cache  *db.Cache
	logger *slog.Logger
}

type WorkerApp struct {
	cache    *db.Cache
	bus      *messaging.Bus
	userSync userworkers.UserLifecycleConsumer
	orders   orderworkers.OrderCreatedConsumer
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	// Connections are established lazily through the cache: the first
	// store operation dials, every later caller reuses the handle.
	cache := db.NewCache(db.DSNOpener(cfg.PostgresDSN))

	userModule := usersyncservice.NewModule(usersyncservice.Dependencies{
		Repo:   userpostgres.NewRepository(cache, logger),
		Clock:  userpostgres.SystemClock{},
		Logger: logger,
	})

	orderRepo := orderpostgres.NewRepository(cache, logger)
	orderModule := orderservice.NewModule(orderservice.Dependencies{
		Orders:      orderRepo,
		Addresses:   orderRepo,
		Clock:       orderpostgres.SystemClock{},
		IDGenerator: orderpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(userModule, orderModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server: server,
		cache:  cache,
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	cache := db.NewCache(db.DSNOpener(cfg.PostgresDSN))
	bus := messaging.NewBus(logger)

	userModule := usersyncservice.NewModule(usersyncservice.Dependencies{
		Repo:   userpostgres.NewRepository(cache, logger),
		Clock:  userpostgres.SystemClock{},
		Logger: logger,
	})

	orderRepo := orderpostgres.NewRepository(cache, logger)
	orderModule := orderservice.NewModule(orderservice.Dependencies{
		Orders:      orderRepo,
		Addresses:   orderRepo,
		Clock:       orderpostgres.SystemClock{},
		IDGenerator: orderpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	return &WorkerApp{
		cache: cache,
		bus:   bus,
		userSync: userworkers.UserLifecycleConsumer{
			Subscriber:  bus,
			Users:       userModule.Service,
			MaxAttempts: cfg.UserSyncMaxAttempts,
			Disabled:    !cfg.EnableUserSyncConsumer,
			Logger:      logger,
		},
		orders: orderworkers.OrderCreatedConsumer{
			Subscriber:   bus,
			Ingest:       orderModule.Ingest,
			MaxAttempts:  cfg.OrderMaxAttempts,
			BatchMaxSize: cfg.OrderBatchMaxSize,
			BatchMaxWait: cfg.OrderBatchMaxWait,
			Disabled:     !cfg.EnableOrderConsumer,
			Logger:       logger,
		},
		logger: logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// Bus exposes the dispatcher adapter so an embedding process can publish
// lifecycle events into the worker.
func (w *WorkerApp) Bus() *messaging.Bus {
	return w.bus
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.userSync.Start(ctx); err != nil {
		return err
	}
	if err := w.orders.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	<-ctx.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.cache != nil {
		return w.cache.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
