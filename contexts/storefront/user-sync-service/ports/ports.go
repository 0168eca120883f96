package ports

import (
	"context"
	"time"

	"quickcart/internal/shared/events"
)

// User is the synchronized storefront user record. Identity is assigned by
// the upstream identity provider and immutable once created.
type User struct {
	UserID    string
	Name      string
	Email     string
	ImageURL  string
	CartItems map[string]int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserLifecyclePayload mirrors the identity provider's user.created and
// user.updated event data.
type UserLifecyclePayload struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	ImageURL       string         `json:"image_url"`
}

type EmailAddress struct {
	Address string `json:"email_address"`
}

type UserDeletedPayload struct {
	ID string `json:"id"`
}

// SyncOutcome distinguishes the terminal states of one handler invocation.
// Replayed deliveries land on already_exists / not_found instead of erroring.
type SyncOutcome string

const (
	OutcomeCreated       SyncOutcome = "created"
	OutcomeAlreadyExists SyncOutcome = "already_exists"
	OutcomeUpdated       SyncOutcome = "updated"
	OutcomeNotFound      SyncOutcome = "not_found"
	OutcomeDeleted       SyncOutcome = "deleted"
)

type SyncResult struct {
	UserID  string
	Outcome SyncOutcome
}

type Clock interface {
	Now() time.Time
}

// Repository is the persisted user collection.
// UpdateUser and DeleteUser report affected rows so callers can tell an
// absent entity apart from a store failure.
type Repository interface {
	InsertUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) (int64, error)
	DeleteUser(ctx context.Context, userID string) (int64, error)
	GetUser(ctx context.Context, userID string) (User, error)
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		maxAttempts int,
		handler func(context.Context, events.Envelope) error,
	) error
}
