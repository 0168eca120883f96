package ports

import (
	"context"
	"time"

	"quickcart/internal/shared/events"
)

type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	PinCode     int    `json:"pinCode"`
	Area        string `json:"area"`
	City        string `json:"city"`
	State       string `json:"state"`
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Order is immutable once persisted; no update or delete path exists.
// UserID ownership is advisory: no foreign key enforces it.
type Order struct {
	OrderID  string
	UserID   string
	Items    []LineItem
	Amount   float64
	Address  ShippingAddress
	PlacedAt time.Time
}

// OrderCreatedPayload mirrors the storefront checkout event data.
// Date is optional; ingestion defaults it to processing time.
type OrderCreatedPayload struct {
	UserID  string          `json:"userId"`
	Items   []LineItem      `json:"items"`
	Amount  float64         `json:"amount"`
	Address ShippingAddress `json:"address"`
	Date    *time.Time      `json:"date,omitempty"`
}

// Address is a user's saved shipping address, recorded the first time it is
// seen on an ingested order and served by the read API.
type Address struct {
	AddressID   string
	UserID      string
	FullName    string
	PhoneNumber string
	PinCode     int
	Area        string
	City        string
	State       string
}

// BulkInsertResult reports an unordered bulk persist: every record is
// attempted, duplicates are skipped and counted, and only infrastructure
// failures surface as errors.
type BulkInsertResult struct {
	Inserted   int
	Duplicates int
}

// BatchResult is the structured success value of one pipeline invocation.
type BatchResult struct {
	Success    bool
	Processed  int
	Inserted   int
	Duplicates int
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type OrderRepository interface {
	BulkInsertOrders(ctx context.Context, orders []Order) (BulkInsertResult, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)
}

type AddressRepository interface {
	UpsertAddress(ctx context.Context, address Address) error
	ListAddressesByUser(ctx context.Context, userID string) ([]Address, error)
}

type BatchSubscriber interface {
	SubscribeBatch(
		ctx context.Context,
		topic string,
		consumerGroup string,
		maxAttempts int,
		maxSize int,
		maxWait time.Duration,
		handler func(context.Context, []events.Envelope) error,
	) error
}
