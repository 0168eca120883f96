package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "quickcart/contexts/storefront/user-sync-service/domain/errors"
	"quickcart/contexts/storefront/user-sync-service/ports"
)

const moduleName = "storefront/user-sync-service"

// Service applies user lifecycle events to the persisted user collection.
//
// The upstream bus delivers every event at least once and gives no ordering
// guarantee between deliveries, so each handler must be safe to run more
// than once with the same payload: "already exists" and "already gone" are
// normal steady-state conditions here, absorbed and logged rather than
// surfaced as failures. Only genuine store errors propagate, which the bus
// interprets as "retry this invocation".
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

// SyncUserCreated inserts the user built from the event payload. A replayed
// delivery (or an entity pre-created by a racing update) reports
// already_exists and succeeds.
func (s Service) SyncUserCreated(ctx context.Context, payload ports.UserLifecyclePayload) (ports.SyncResult, error) {
	logger := ResolveLogger(s.Logger)

	user, err := userFromPayload(payload, s.now())
	if err != nil {
		return ports.SyncResult{}, err
	}

	if err := s.Repo.InsertUser(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			logger.Warn("user already present, absorbing replayed create",
				"event", "user_sync_create_replayed",
				"module", moduleName,
				"layer", "application",
				"user_id", user.UserID,
			)
			return ports.SyncResult{UserID: user.UserID, Outcome: ports.OutcomeAlreadyExists}, nil
		}
		logger.Error("user insert failed",
			"event", "user_sync_create_failed",
			"module", moduleName,
			"layer", "application",
			"user_id", user.UserID,
			"error", err.Error(),
		)
		return ports.SyncResult{}, err
	}

	logger.Info("user created",
		"event", "user_sync_created",
		"module", moduleName,
		"layer", "application",
		"user_id", user.UserID,
	)
	return ports.SyncResult{UserID: user.UserID, Outcome: ports.OutcomeCreated}, nil
}

// SyncUserUpdated overwrites the mapped fields for the given identity.
// An absent entity affects zero rows and reports not_found without error;
// the matching create may still be in flight.
func (s Service) SyncUserUpdated(ctx context.Context, payload ports.UserLifecyclePayload) (ports.SyncResult, error) {
	logger := ResolveLogger(s.Logger)

	user, err := userFromPayload(payload, s.now())
	if err != nil {
		return ports.SyncResult{}, err
	}

	affected, err := s.Repo.UpdateUser(ctx, user)
	if err != nil {
		logger.Error("user update failed",
			"event", "user_sync_update_failed",
			"module", moduleName,
			"layer", "application",
			"user_id", user.UserID,
			"error", err.Error(),
		)
		return ports.SyncResult{}, err
	}
	if affected == 0 {
		logger.Warn("update affected no rows, user absent",
			"event", "user_sync_update_absent",
			"module", moduleName,
			"layer", "application",
			"user_id", user.UserID,
		)
		return ports.SyncResult{UserID: user.UserID, Outcome: ports.OutcomeNotFound}, nil
	}

	logger.Info("user updated",
		"event", "user_sync_updated",
		"module", moduleName,
		"layer", "application",
		"user_id", user.UserID,
	)
	return ports.SyncResult{UserID: user.UserID, Outcome: ports.OutcomeUpdated}, nil
}

// SyncUserDeleted removes the record by identity. Deleting an already-absent
// user is absorbed as a replayed delivery.
func (s Service) SyncUserDeleted(ctx context.Context, payload ports.UserDeletedPayload) (ports.SyncResult, error) {
	logger := ResolveLogger(s.Logger)

	userID := strings.TrimSpace(payload.ID)
	if userID == "" {
		return ports.SyncResult{}, domainerrors.ErrInvalidPayload
	}

	affected, err := s.Repo.DeleteUser(ctx, userID)
	if err != nil {
		logger.Error("user delete failed",
			"event", "user_sync_delete_failed",
			"module", moduleName,
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return ports.SyncResult{}, err
	}
	if affected == 0 {
		logger.Warn("user already absent, absorbing replayed delete",
			"event", "user_sync_delete_replayed",
			"module", moduleName,
			"layer", "application",
			"user_id", userID,
		)
		return ports.SyncResult{UserID: userID, Outcome: ports.OutcomeNotFound}, nil
	}

	logger.Info("user deleted",
		"event", "user_sync_deleted",
		"module", moduleName,
		"layer", "application",
		"user_id", userID,
	)
	return ports.SyncResult{UserID: userID, Outcome: ports.OutcomeDeleted}, nil
}

// GetUser serves the read API.
func (s Service) GetUser(ctx context.Context, userID string) (ports.User, error) {
	if strings.TrimSpace(userID) == "" {
		return ports.User{}, domainerrors.ErrInvalidPayload
	}
	return s.Repo.GetUser(ctx, strings.TrimSpace(userID))
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func userFromPayload(payload ports.UserLifecyclePayload, now time.Time) (ports.User, error) {
	userID := strings.TrimSpace(payload.ID)
	if userID == "" || len(payload.EmailAddresses) == 0 {
		return ports.User{}, domainerrors.ErrInvalidPayload
	}
	email := strings.TrimSpace(payload.EmailAddresses[0].Address)
	if email == "" {
		return ports.User{}, domainerrors.ErrInvalidPayload
	}

	name := strings.TrimSpace(strings.TrimSpace(payload.FirstName) + " " + strings.TrimSpace(payload.LastName))
	return ports.User{
		UserID:    userID,
		Name:      name,
		Email:     email,
		ImageURL:  strings.TrimSpace(payload.ImageURL),
		CartItems: map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
