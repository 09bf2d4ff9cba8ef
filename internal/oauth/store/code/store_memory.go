package code

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entry does not exist
// - Return ErrExpired when the entry exists but its expiry has passed
// - Return nil for successful operations

// InMemoryStore tracks issued, unredeemed authorization codes.
type InMemoryStore struct {
	mu    sync.RWMutex
	codes map[string]*models.AuthorizationCode
}

// NewMemory constructs an empty in-memory code registry.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string]*models.AuthorizationCode)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.Code] = c
	return nil
}

// Redeem atomically validates and deletes the code under a single write
// lock. Two concurrent Redeem calls on the same code can never both
// succeed: the first deletes the entry, the second sees ErrNotFound.
// Expired entries are deleted and reported as ErrExpired; callers must
// surface both outcomes to clients as the same opaque error.
func (s *InMemoryStore) Redeem(_ context.Context, code string, now time.Time) (*models.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	delete(s.codes, code)
	if c.Expired(now) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return c, nil
}

// DeleteExpired removes all codes expired as of the given time.
// The time parameter is injected for testability (no hidden time.Now() calls).
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, c := range s.codes {
		if c.Expired(now) {
			delete(s.codes, key)
			deleted++
		}
	}
	return deleted, nil
}
