package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "quickcart/contexts/storefront/user-sync-service/domain/errors"
	"quickcart/contexts/storefront/user-sync-service/ports"
)

// Store is the in-memory repository used by unit tests and the developer
// bootstrap path. It also serves as the test Clock.
type Store struct {
	mu    sync.RWMutex
	users map[string]ports.User

	now       time.Time
	insertErr error
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]ports.User),
		now:   time.Now().UTC(),
	}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetInsertError forces the next inserts to fail with err, simulating an
// infrastructure failure.
func (s *Store) SetInsertError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

func (s *Store) InsertUser(_ context.Context, user ports.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return s.insertErr
	}
	if _, exists := s.users[user.UserID]; exists {
		return domainerrors.ErrUserAlreadyExists
	}
	s.users[user.UserID] = cloneUser(user)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user ports.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.UserID]
	if !exists {
		return 0, nil
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.ImageURL = user.ImageURL
	existing.UpdatedAt = user.UpdatedAt
	s.users[user.UserID] = existing
	return 1, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return 0, nil
	}
	delete(s.users, userID)
	return 1, nil
}

func (s *Store) GetUser(_ context.Context, userID string) (ports.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return ports.User{}, domainerrors.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// Len reports the stored record count; tests assert idempotency with it.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func cloneUser(user ports.User) ports.User {
	cart := make(map[string]int, len(user.CartItems))
	for product, quantity := range user.CartItems {
		cart[product] = quantity
	}
	user.CartItems = cart
	return user
}
