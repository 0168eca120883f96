package usersyncservice

import (
	"log/slog"

	"quickcart/contexts/storefront/user-sync-service/adapters/memory"
	"quickcart/contexts/storefront/user-sync-service/application"
	"quickcart/contexts/storefront/user-sync-service/ports"
)

// Module is the composition surface for user synchronization.
// Runtime wiring consumes Service; Store is exposed for tests/inspection.
type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

// NewModule wires the sync handlers against explicit ports.
func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repo,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the sync handlers against the in-memory adapter.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
