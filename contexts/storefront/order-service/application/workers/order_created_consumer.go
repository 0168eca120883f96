package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "quickcart/contexts/storefront/order-service/application"
	"quickcart/contexts/storefront/order-service/ports"
	"quickcart/internal/shared/events"
)

const defaultOrderConsumerGroup = "order-service-order-created-cg"

// OrderCreatedConsumer binds the order.created topic to the ingestion
// pipeline. Batch formation (max size / max wait) and the retry ceiling are
// dispatcher configuration passed through from the platform; the pipeline
// itself never computes them.
type OrderCreatedConsumer struct {
	Subscriber    ports.BatchSubscriber
	Ingest        application.IngestOrdersUseCase
	ConsumerGroup string
	MaxAttempts   int
	BatchMaxSize  int
	BatchMaxWait  time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c OrderCreatedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("order.created consumer disabled by feature flag",
			"event", "order_created_consumer_disabled",
			"module", "storefront/order-service",
			"layer", "worker",
		)
		return nil
	}

	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultOrderConsumerGroup
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	maxSize := c.BatchMaxSize
	if maxSize <= 0 {
		maxSize = 5
	}
	maxWait := c.BatchMaxWait
	if maxWait <= 0 {
		maxWait = 5 * time.Second
	}

	return c.Subscriber.SubscribeBatch(ctx, events.TopicOrderCreated, group, attempts, maxSize, maxWait, c.handleBatch)
}

func (c OrderCreatedConsumer) handleBatch(ctx context.Context, batch []events.Envelope) error {
	logger := application.ResolveLogger(c.Logger)

	payloads := make([]ports.OrderCreatedPayload, 0, len(batch))
	for _, event := range batch {
		var payload ports.OrderCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return fmt.Errorf("decode order.created payload %s: %w", event.EventID, err)
		}
		payloads = append(payloads, payload)
	}

	result, err := c.Ingest.IngestBatch(ctx, payloads)
	if err != nil {
		return err
	}

	logger.Info("order batch ingested",
		"event", "order_batch_ingested",
		"module", "storefront/order-service",
		"layer", "worker",
		"batch_size", len(batch),
		"processed", result.Processed,
		"duplicates", result.Duplicates,
	)
	return nil
}
