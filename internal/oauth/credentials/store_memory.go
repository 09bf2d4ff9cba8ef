package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// InMemoryStore holds seeded profiles for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*Profile
	byID    map[string]*Profile
}

// NewMemory constructs an empty in-memory profile store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byEmail: make(map[string]*Profile),
		byID:    make(map[string]*Profile),
	}
}

// Seed adds a profile with a freshly hashed password and returns it.
func (s *InMemoryStore) Seed(email, name, password string) (*Profile, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	p := &Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[p.Email] = p
	s.byID[p.ID] = p
	return p, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byEmail[email]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
}
