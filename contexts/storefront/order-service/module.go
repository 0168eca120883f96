package orderservice

import (
	"log/slog"

	"quickcart/contexts/storefront/order-service/adapters/memory"
	"quickcart/contexts/storefront/order-service/application"
	"quickcart/contexts/storefront/order-service/application/queries"
	"quickcart/contexts/storefront/order-service/ports"
)

// Module is the composition surface for order ingestion and reads.
// Runtime wiring consumes the use cases; Store is exposed for tests.
type Module struct {
	Ingest        application.IngestOrdersUseCase
	ListOrders    queries.ListUserOrdersUseCase
	ListAddresses queries.ListUserAddressesUseCase
	Store         *memory.Store
}

type Dependencies struct {
	Orders      ports.OrderRepository
	Addresses   ports.AddressRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the order use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	return Module{
		Ingest: application.IngestOrdersUseCase{
			Orders:      deps.Orders,
			Addresses:   deps.Addresses,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		ListOrders: queries.ListUserOrdersUseCase{
			Orders: deps.Orders,
			Logger: deps.Logger,
		},
		ListAddresses: queries.ListUserAddressesUseCase{
			Addresses: deps.Addresses,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the order use cases against the in-memory adapter.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Orders:      store,
		Addresses:   store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
