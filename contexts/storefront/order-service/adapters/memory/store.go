package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"quickcart/contexts/storefront/order-service/ports"
)

// Store is the in-memory order/address repository used by unit tests and
// the developer bootstrap path. It doubles as the test Clock and
// IDGenerator.
type Store struct {
	mu        sync.RWMutex
	orders    map[string]ports.Order
	addresses map[string]ports.Address

	now      time.Time
	sequence uint64
	bulkErr  error
}

func NewStore() *Store {
	return &Store{
		orders:    make(map[string]ports.Order),
		addresses: make(map[string]ports.Address),
		now:       time.Now().UTC(),
	}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetBulkInsertError forces the next bulk insert to fail with err,
// simulating an infrastructure failure.
func (s *Store) SetBulkInsertError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkErr = err
}

// SeedOrder pre-inserts an order; tests use it to provoke duplicate keys.
func (s *Store) SeedOrder(order ports.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.OrderID] = order
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("local_%d", s.sequence), nil
}

func (s *Store) BulkInsertOrders(_ context.Context, orders []ports.Order) (ports.BulkInsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bulkErr != nil {
		return ports.BulkInsertResult{}, s.bulkErr
	}

	var result ports.BulkInsertResult
	for _, order := range orders {
		if _, exists := s.orders[order.OrderID]; exists {
			result.Duplicates++
			continue
		}
		s.orders[order.OrderID] = order
		result.Inserted++
	}
	return result, nil
}

func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]ports.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ports.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			items = append(items, order)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PlacedAt.After(items[j].PlacedAt)
	})
	return items, nil
}

func (s *Store) UpsertAddress(_ context.Context, address ports.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := addressKey(address)
	if _, exists := s.addresses[key]; exists {
		return nil
	}
	s.addresses[key] = address
	return nil
}

func (s *Store) ListAddressesByUser(_ context.Context, userID string) ([]ports.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ports.Address
	for _, address := range s.addresses {
		if address.UserID == userID {
			items = append(items, address)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AddressID < items[j].AddressID
	})
	return items, nil
}

// OrderCount reports stored orders; tests assert partial-failure counts.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func addressKey(address ports.Address) string {
	return strings.Join([]string{
		address.UserID,
		address.FullName,
		address.PhoneNumber,
		fmt.Sprintf("%d", address.PinCode),
		address.Area,
		address.City,
		address.State,
	}, "|")
}
