package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "quickcart/contexts/storefront/order-service/domain/errors"
	"quickcart/contexts/storefront/order-service/ports"
)

const moduleName = "storefront/order-service"

// IngestOrdersUseCase persists one accumulated batch of order.created
// events per invocation.
//
// Unlike user sync, nothing here is absorbed silently: a malformed event
// fails the whole invocation before anything is written, and any store
// error propagates so the bus re-invokes the batch. Duplicate keys inside
// the bulk insert are the one tolerated condition; they occur exactly when
// the bus redelivers a batch that already partially landed, and skipping
// them is what makes that redelivery safe.
type IngestOrdersUseCase struct {
	Orders      ports.OrderRepository
	Addresses   ports.AddressRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (uc IngestOrdersUseCase) IngestBatch(ctx context.Context, batch []ports.OrderCreatedPayload) (ports.BatchResult, error) {
	logger := ResolveLogger(uc.Logger)
	if len(batch) == 0 {
		return ports.BatchResult{Success: true}, nil
	}

	orders, err := uc.transform(ctx, batch)
	if err != nil {
		logger.Error("order batch rejected",
			"event", "order_batch_rejected",
			"module", moduleName,
			"layer", "application",
			"batch_size", len(batch),
			"error", err.Error(),
		)
		return ports.BatchResult{}, err
	}

	logger.Debug("processing order batch",
		"event", "order_batch_processing",
		"module", moduleName,
		"layer", "application",
		"batch_size", len(orders),
	)

	result, err := uc.Orders.BulkInsertOrders(ctx, orders)
	if err != nil {
		logger.Error("order bulk insert failed",
			"event", "order_bulk_insert_failed",
			"module", moduleName,
			"layer", "application",
			"batch_size", len(orders),
			"inserted", result.Inserted,
			"error", err.Error(),
		)
		return ports.BatchResult{}, err
	}

	if err := uc.recordAddresses(ctx, orders); err != nil {
		logger.Error("address recording failed",
			"event", "order_address_record_failed",
			"module", moduleName,
			"layer", "application",
			"error", err.Error(),
		)
		return ports.BatchResult{}, err
	}

	logger.Info("order batch persisted",
		"event", "order_batch_persisted",
		"module", moduleName,
		"layer", "application",
		"batch_size", len(orders),
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
	)
	return ports.BatchResult{
		Success:    true,
		Processed:  result.Inserted,
		Inserted:   result.Inserted,
		Duplicates: result.Duplicates,
	}, nil
}

// transform validates every event before anything is persisted and
// normalizes missing placement timestamps. Already-valid fields pass
// through untouched.
func (uc IngestOrdersUseCase) transform(ctx context.Context, batch []ports.OrderCreatedPayload) ([]ports.Order, error) {
	now := uc.now()
	orders := make([]ports.Order, 0, len(batch))
	for i, payload := range batch {
		userID := strings.TrimSpace(payload.UserID)
		if userID == "" {
			return nil, fmt.Errorf("%w: event %d missing userId", domainerrors.ErrInvalidOrderPayload, i)
		}
		if len(payload.Items) == 0 {
			return nil, fmt.Errorf("%w: event %d missing items", domainerrors.ErrInvalidOrderPayload, i)
		}

		placedAt := now
		if payload.Date != nil && !payload.Date.IsZero() {
			placedAt = payload.Date.UTC()
		}

		orderID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate order id: %w", err)
		}

		orders = append(orders, ports.Order{
			OrderID:  orderID,
			UserID:   userID,
			Items:    payload.Items,
			Amount:   payload.Amount,
			Address:  payload.Address,
			PlacedAt: placedAt,
		})
	}
	return orders, nil
}

func (uc IngestOrdersUseCase) recordAddresses(ctx context.Context, orders []ports.Order) error {
	if uc.Addresses == nil {
		return nil
	}
	for _, order := range orders {
		if order.Address.IsZero() {
			continue
		}
		addressID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return fmt.Errorf("generate address id: %w", err)
		}
		err = uc.Addresses.UpsertAddress(ctx, ports.Address{
			AddressID:   addressID,
			UserID:      order.UserID,
			FullName:    order.Address.FullName,
			PhoneNumber: order.Address.PhoneNumber,
			PinCode:     order.Address.PinCode,
			Area:        order.Address.Area,
			City:        order.Address.City,
			State:       order.Address.State,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (uc IngestOrdersUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
