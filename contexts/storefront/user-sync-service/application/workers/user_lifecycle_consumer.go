package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	application "quickcart/contexts/storefront/user-sync-service/application"
	"quickcart/contexts/storefront/user-sync-service/ports"
	"quickcart/internal/shared/events"
)

const defaultUserSyncConsumerGroup = "user-sync-service-lifecycle-cg"

// UserLifecycleConsumer binds the three identity-provider lifecycle topics
// to the sync service. Redelivery on handler error is the bus's job; the
// service's idempotency makes repeats safe.
type UserLifecycleConsumer struct {
	Subscriber    ports.EventSubscriber
	Users         application.Service
	ConsumerGroup string
	MaxAttempts   int
	Disabled      bool
	Logger        *slog.Logger
}

func (c UserLifecycleConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("user lifecycle consumer disabled by feature flag",
			"event", "user_lifecycle_consumer_disabled",
			"module", "storefront/user-sync-service",
			"layer", "worker",
		)
		return nil
	}

	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultUserSyncConsumerGroup
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	if err := c.Subscriber.Subscribe(ctx, events.TopicUserCreated, group, attempts, c.handleCreated); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, events.TopicUserUpdated, group, attempts, c.handleUpdated); err != nil {
		return err
	}
	return c.Subscriber.Subscribe(ctx, events.TopicUserDeleted, group, attempts, c.handleDeleted)
}

func (c UserLifecycleConsumer) handleCreated(ctx context.Context, event events.Envelope) error {
	var payload ports.UserLifecyclePayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode user.created payload: %w", err)
	}
	result, err := c.Users.SyncUserCreated(ctx, payload)
	if err != nil {
		return err
	}
	c.logOutcome(event, result)
	return nil
}

func (c UserLifecycleConsumer) handleUpdated(ctx context.Context, event events.Envelope) error {
	var payload ports.UserLifecyclePayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode user.updated payload: %w", err)
	}
	result, err := c.Users.SyncUserUpdated(ctx, payload)
	if err != nil {
		return err
	}
	c.logOutcome(event, result)
	return nil
}

func (c UserLifecycleConsumer) handleDeleted(ctx context.Context, event events.Envelope) error {
	var payload ports.UserDeletedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode user.deleted payload: %w", err)
	}
	result, err := c.Users.SyncUserDeleted(ctx, payload)
	if err != nil {
		return err
	}
	c.logOutcome(event, result)
	return nil
}

func (c UserLifecycleConsumer) logOutcome(event events.Envelope, result ports.SyncResult) {
	application.ResolveLogger(c.Logger).Info("user lifecycle event applied",
		"event", "user_lifecycle_applied",
		"module", "storefront/user-sync-service",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"user_id", result.UserID,
		"outcome", string(result.Outcome),
	)
}
