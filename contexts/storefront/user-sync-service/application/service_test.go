package application

import (
	"context"
	"errors"
	"testing"

	"quickcart/contexts/storefront/user-sync-service/adapters/memory"
	domainerrors "quickcart/contexts/storefront/user-sync-service/domain/errors"
	"quickcart/contexts/storefront/user-sync-service/ports"
)

func adaPayload() ports.UserLifecyclePayload {
	return ports.UserLifecyclePayload{
		ID:             "u1",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		EmailAddresses: []ports.EmailAddress{{Address: "ada@x.com"}},
		ImageURL:       "http://x/a.png",
	}
}

func TestSyncUserCreatedMapsPayload(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	result, err := service.SyncUserCreated(context.Background(), adaPayload())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Outcome != ports.OutcomeCreated {
		t.Fatalf("expected created outcome, got %s", result.Outcome)
	}

	user, err := service.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if user.Email != "ada@x.com" {
		t.Fatalf("expected first email on record, got %q", user.Email)
	}
	if user.Name != "Ada Lovelace" {
		t.Fatalf("expected concatenated name, got %q", user.Name)
	}
	if user.ImageURL != "http://x/a.png" {
		t.Fatalf("unexpected image url %q", user.ImageURL)
	}
	if user.CartItems == nil || len(user.CartItems) != 0 {
		t.Fatalf("expected empty cart, got %v", user.CartItems)
	}
}

func TestSyncUserCreatedIdempotentReplay(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	if _, err := service.SyncUserCreated(context.Background(), adaPayload()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	result, err := service.SyncUserCreated(context.Background(), adaPayload())
	if err != nil {
		t.Fatalf("replayed create must not error, got %v", err)
	}
	if result.Outcome != ports.OutcomeAlreadyExists {
		t.Fatalf("expected already_exists outcome, got %s", result.Outcome)
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one stored record, got %d", store.Len())
	}
}

func TestSyncUserUpdatedOverwritesMappedFields(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	if _, err := service.SyncUserCreated(context.Background(), adaPayload()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := adaPayload()
	updated.FirstName = "Augusta"
	updated.EmailAddresses = []ports.EmailAddress{{Address: "augusta@x.com"}}
	result, err := service.SyncUserUpdated(context.Background(), updated)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Outcome != ports.OutcomeUpdated {
		t.Fatalf("expected updated outcome, got %s", result.Outcome)
	}

	user, err := service.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if user.Name != "Augusta Lovelace" || user.Email != "augusta@x.com" {
		t.Fatalf("fields were not overwritten: %+v", user)
	}
}

func TestSyncUserUpdatedAbsentUserAffectsNothing(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	result, err := service.SyncUserUpdated(context.Background(), adaPayload())
	if err != nil {
		t.Fatalf("update of absent user must not error, got %v", err)
	}
	if result.Outcome != ports.OutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %s", result.Outcome)
	}
	if store.Len() != 0 {
		t.Fatalf("store must be unchanged, got %d records", store.Len())
	}
}

func TestSyncUserDeletedRemovesUser(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	if _, err := service.SyncUserCreated(context.Background(), adaPayload()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	result, err := service.SyncUserDeleted(context.Background(), ports.UserDeletedPayload{ID: "u1"})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.Outcome != ports.OutcomeDeleted {
		t.Fatalf("expected deleted outcome, got %s", result.Outcome)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", store.Len())
	}
}

func TestSyncUserDeletedAbsentUserIsAbsorbed(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	result, err := service.SyncUserDeleted(context.Background(), ports.UserDeletedPayload{ID: "ghost"})
	if err != nil {
		t.Fatalf("replayed delete must not error, got %v", err)
	}
	if result.Outcome != ports.OutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %s", result.Outcome)
	}
}

func TestSyncUserCreatedRejectsPayloadWithoutEmail(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	payload := adaPayload()
	payload.EmailAddresses = nil
	if _, err := service.SyncUserCreated(context.Background(), payload); !errors.Is(err, domainerrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
}

func TestSyncUserCreatedPropagatesStoreErrors(t *testing.T) {
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store}

	storeErr := errors.New("connection reset")
	store.SetInsertError(storeErr)
	if _, err := service.SyncUserCreated(context.Background(), adaPayload()); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
