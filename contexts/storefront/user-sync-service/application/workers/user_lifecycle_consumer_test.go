package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quickcart/contexts/storefront/user-sync-service/adapters/memory"
	application "quickcart/contexts/storefront/user-sync-service/application"
	"quickcart/internal/shared/events"
)

type stubSubscriber struct {
	handlers map[string]func(context.Context, events.Envelope) error
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{handlers: make(map[string]func(context.Context, events.Envelope) error)}
}

func (s *stubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	_ int,
	handler func(context.Context, events.Envelope) error,
) error {
	s.handlers[topic] = handler
	return nil
}

func lifecycleEnvelope(t *testing.T, eventType string, payload any) events.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return events.Envelope{
		EventID:    "evt_1",
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func TestConsumerSubscribesToAllLifecycleTopics(t *testing.T) {
	store := memory.NewStore()
	subscriber := newStubSubscriber()
	consumer := UserLifecycleConsumer{
		Subscriber: subscriber,
		Users:      application.Service{Repo: store, Clock: store},
	}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for _, topic := range []string{events.TopicUserCreated, events.TopicUserUpdated, events.TopicUserDeleted} {
		if subscriber.handlers[topic] == nil {
			t.Fatalf("expected subscription for %s", topic)
		}
	}
}

func TestConsumerAppliesCreatedEvent(t *testing.T) {
	store := memory.NewStore()
	subscriber := newStubSubscriber()
	consumer := UserLifecycleConsumer{
		Subscriber: subscriber,
		Users:      application.Service{Repo: store, Clock: store},
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	event := lifecycleEnvelope(t, events.TopicUserCreated, map[string]any{
		"id":         "u1",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email_addresses": []map[string]string{
			{"email_address": "ada@x.com"},
		},
		"image_url": "http://x/a.png",
	})
	if err := subscriber.handlers[events.TopicUserCreated](context.Background(), event); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored user, got %d", store.Len())
	}
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	store := memory.NewStore()
	subscriber := newStubSubscriber()
	consumer := UserLifecycleConsumer{
		Subscriber: subscriber,
		Users:      application.Service{Repo: store, Clock: store},
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	event := events.Envelope{
		EventID:   "evt_bad",
		EventType: events.TopicUserCreated,
		Data:      json.RawMessage(`{"id":`),
	}
	if err := subscriber.handlers[events.TopicUserCreated](context.Background(), event); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
}

func TestConsumerDisabledByFlagSubscribesNothing(t *testing.T) {
	subscriber := newStubSubscriber()
	consumer := UserLifecycleConsumer{
		Subscriber: subscriber,
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(subscriber.handlers) != 0 {
		t.Fatalf("expected no subscriptions, got %d", len(subscriber.handlers))
	}
}
