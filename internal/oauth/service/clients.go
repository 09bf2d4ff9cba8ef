package service

import (
	"crypto/subtle"
	"fmt"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// StaticClientRegistry holds the clients seeded at startup. Lookups
// are read-only after construction, so no locking is needed.
type StaticClientRegistry struct {
	clients map[string]*models.Client
}

// NewStaticClientRegistry seeds a registry with the given clients.
func NewStaticClientRegistry(clients ...models.Client) *StaticClientRegistry {
	r := &StaticClientRegistry{clients: make(map[string]*models.Client, len(clients))}
	for i := range clients {
		c := clients[i]
		r.clients[c.ID] = &c
	}
	return r
}

// Lookup returns the client for an id, or sentinel.ErrNotFound.
func (r *StaticClientRegistry) Lookup(clientID string) (*models.Client, error) {
	if c, ok := r.clients[clientID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
}

// Validate reports whether the client id is registered. Fails closed.
func (r *StaticClientRegistry) Validate(clientID string) bool {
	_, ok := r.clients[clientID]
	return ok
}

// ValidateWithSecret reports whether both id and secret match. The
// secret comparison is constant-time.
func (r *StaticClientRegistry) ValidateWithSecret(clientID, secret string) bool {
	c, ok := r.clients[clientID]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}
