package state

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
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore tracks pending authorization requests in memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*models.AuthState
}

// NewMemory constructs an empty in-memory state registry.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*models.AuthState)}
}

func (s *InMemoryStore) Create(_ context.Context, st *models.AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.Token] = st
	return nil
}

// Consume looks up a live state entry. An expired-but-present entry is
// removed and reported exactly like an absent one. The entry itself is
// NOT deleted on success: a failed password attempt must leave the
// state valid so the login form can be redisplayed, and the caller
// deletes it once, immediately after a successful login.
func (s *InMemoryStore) Consume(_ context.Context, token string, now time.Time) (*models.AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[token]
	if !ok {
		return nil, fmt.Errorf("state not found: %w", sentinel.ErrNotFound)
	}
	if st.Expired(now) {
		delete(s.states, token)
		return nil, fmt.Errorf("state expired: %w", sentinel.ErrNotFound)
	}
	return st, nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[token]; !ok {
		return fmt.Errorf("state not found: %w", sentinel.ErrNotFound)
	}
	delete(s.states, token)
	return nil
}

// DeleteExpired removes all state entries expired as of the given time.
// The time parameter is injected for testability (no hidden time.Now() calls).
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for token, st := range s.states {
		if st.Expired(now) {
			delete(s.states, token)
			deleted++
		}
	}
	return deleted, nil
}
