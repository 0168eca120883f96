package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"quickcart/contexts/storefront/order-service/adapters/memory"
	domainerrors "quickcart/contexts/storefront/order-service/domain/errors"
	"quickcart/contexts/storefront/order-service/ports"
)

func orderPayload(userID string) ports.OrderCreatedPayload {
	return ports.OrderCreatedPayload{
		UserID: userID,
		Items:  []ports.LineItem{{ProductID: "prod_001", Quantity: 1}},
		Amount: 49.99,
		Address: ports.ShippingAddress{
			FullName:    "Ada Lovelace",
			PhoneNumber: "5550100",
			PinCode:     10001,
			Area:        "Marylebone",
			City:        "London",
			State:       "LDN",
		},
	}
}

func newIngest(store *memory.Store) IngestOrdersUseCase {
	return IngestOrdersUseCase{
		Orders:      store,
		Addresses:   store,
		Clock:       store,
		IDGenerator: store,
	}
}

func TestIngestBatchPersistsAllOrders(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	batch := []ports.OrderCreatedPayload{
		orderPayload("u1"),
		orderPayload("u1"),
		orderPayload("u2"),
	}
	result, err := ingest.IngestBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !result.Success || result.Processed != 3 {
		t.Fatalf("expected 3 processed, got %+v", result)
	}
	if store.OrderCount() != 3 {
		t.Fatalf("expected 3 stored orders, got %d", store.OrderCount())
	}
}

func TestIngestBatchToleratesDuplicateKeys(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	// The third generated order id collides with a previously landed order,
	// as happens when the bus redelivers a partially persisted batch.
	store.SeedOrder(ports.Order{OrderID: "local_3", UserID: "earlier"})

	batch := make([]ports.OrderCreatedPayload, 5)
	for i := range batch {
		batch[i] = orderPayload("u1")
	}
	result, err := ingest.IngestBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("partial duplicate must not fail the invocation: %v", err)
	}
	if result.Processed != 4 {
		t.Fatalf("expected 4 processed, got %d", result.Processed)
	}
	if result.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.Duplicates)
	}
	if store.OrderCount() != 5 {
		t.Fatalf("expected 5 stored orders (4 new + 1 seeded), got %d", store.OrderCount())
	}
}

func TestIngestBatchFailsFastOnInvalidEvent(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	batch := []ports.OrderCreatedPayload{
		orderPayload("u1"),
		{UserID: "u1", Amount: 10}, // no items
		orderPayload("u1"),
	}
	_, err := ingest.IngestBatch(context.Background(), batch)
	if !errors.Is(err, domainerrors.ErrInvalidOrderPayload) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.OrderCount() != 0 {
		t.Fatalf("validation failure must persist nothing, got %d orders", store.OrderCount())
	}
}

func TestIngestBatchRejectsMissingUser(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	batch := []ports.OrderCreatedPayload{
		{Items: []ports.LineItem{{ProductID: "prod_001", Quantity: 1}}},
	}
	if _, err := ingest.IngestBatch(context.Background(), batch); !errors.Is(err, domainerrors.ErrInvalidOrderPayload) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestBatchDefaultsPlacementTime(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)
	ingest := newIngest(store)

	explicit := time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC)
	withDate := orderPayload("u1")
	withDate.Date = &explicit

	batch := []ports.OrderCreatedPayload{orderPayload("u1"), withDate}
	if _, err := ingest.IngestBatch(context.Background(), batch); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	orders, err := store.ListOrdersByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Sorted newest first: the defaulted order carries processing time.
	if !orders[0].PlacedAt.Equal(now) {
		t.Fatalf("expected defaulted placement time %v, got %v", now, orders[0].PlacedAt)
	}
	if !orders[1].PlacedAt.Equal(explicit) {
		t.Fatalf("expected explicit placement time preserved, got %v", orders[1].PlacedAt)
	}
}

func TestIngestBatchRecordsDistinctAddressesOnce(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	batch := []ports.OrderCreatedPayload{orderPayload("u1"), orderPayload("u1")}
	if _, err := ingest.IngestBatch(context.Background(), batch); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	addresses, err := store.ListAddressesByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(addresses) != 1 {
		t.Fatalf("expected one recorded address, got %d", len(addresses))
	}
}

func TestIngestBatchPropagatesStoreErrors(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	storeErr := errors.New("connection reset")
	store.SetBulkInsertError(storeErr)
	if _, err := ingest.IngestBatch(context.Background(), []ports.OrderCreatedPayload{orderPayload("u1")}); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestIngestEmptyBatchSucceeds(t *testing.T) {
	store := memory.NewStore()
	ingest := newIngest(store)

	result, err := ingest.IngestBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if !result.Success || result.Processed != 0 {
		t.Fatalf("expected empty success, got %+v", result)
	}
}
