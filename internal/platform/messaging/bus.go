package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quickcart/internal/shared/events"
)

// Handler consumes a single delivered event. Alias so consumer ports can
// declare the same signature without importing this package.
type Handler = func(ctx context.Context, event events.Envelope) error

// BatchHandler consumes one accumulated batch per invocation. Handlers have
// no visibility into how the batch was formed.
type BatchHandler = func(ctx context.Context, batch []events.Envelope) error

// Bus is the event dispatcher adapter used by the worker process.
// Current implementation is in-process publish/subscribe while runtime
// wiring is finalized for the hosted event platform; delivery semantics
// match what handlers must tolerate there: at-least-once delivery,
// bounded per-invocation retry, and size/time batch accumulation.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	subs := append([]chan events.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
		}
	}
	return nil
}

// Subscribe delivers each event to handler individually, redelivering a
// failed invocation up to maxAttempts times.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	maxAttempts int,
	handler Handler,
) error {
	ch := b.addSubscriber(topic)

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				b.deliver(ctx, topic, consumerGroup, maxAttempts, handler, event)
			}
		}
	}()
	return nil
}

// SubscribeBatch accumulates events for topic and hands the handler one
// batch whenever maxSize events are pending or maxWait has elapsed since
// the first pending event, whichever occurs first.
func (b *Bus) SubscribeBatch(
	ctx context.Context,
	topic string,
	consumerGroup string,
	maxAttempts int,
	maxSize int,
	maxWait time.Duration,
	handler BatchHandler,
) error {
	if maxSize <= 0 {
		maxSize = 1
	}
	if maxWait <= 0 {
		maxWait = time.Second
	}
	ch := b.addSubscriber(topic)

	go func() {
		var pending []events.Envelope
		timer := time.NewTimer(maxWait)
		if !timer.Stop() {
			<-timer.C
		}

		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := pending
			pending = nil
			b.deliverBatch(ctx, topic, consumerGroup, maxAttempts, handler, batch)
		}

		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if len(pending) == 0 {
					timer.Reset(maxWait)
				}
				pending = append(pending, event)
				if len(pending) >= maxSize {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					flush()
				}
			case <-timer.C:
				flush()
			}
		}
	}()
	return nil
}

func (b *Bus) deliver(
	ctx context.Context,
	topic string,
	consumerGroup string,
	maxAttempts int,
	handler Handler,
	event events.Envelope,
) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = handler(ctx, event); err == nil {
			return
		}
		b.logger.Warn("event handler failed, will retry",
			"event", "bus_delivery_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"event_id", event.EventID,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err.Error(),
		)
	}
	// Retries exhausted. Dead-lettering and alerting belong to the hosted
	// event platform, not to handlers.
	b.logger.Error("event delivery attempts exhausted",
		"event", "bus_delivery_exhausted",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
		"event_id", event.EventID,
		"max_attempts", maxAttempts,
		"error", err.Error(),
	)
}

func (b *Bus) deliverBatch(
	ctx context.Context,
	topic string,
	consumerGroup string,
	maxAttempts int,
	handler BatchHandler,
	batch []events.Envelope,
) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = handler(ctx, batch); err == nil {
			return
		}
		b.logger.Warn("batch handler failed, will retry whole batch",
			"event", "bus_batch_delivery_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"consumer_group", consumerGroup,
			"batch_size", len(batch),
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err.Error(),
		)
	}
	b.logger.Error("batch delivery attempts exhausted",
		"event", "bus_batch_delivery_exhausted",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
		"batch_size", len(batch),
		"max_attempts", maxAttempts,
		"error", err.Error(),
	)
}

func (b *Bus) addSubscriber(topic string) chan events.Envelope {
	ch := make(chan events.Envelope, 128)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

func (b *Bus) removeSubscriber(topic string, target chan events.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
