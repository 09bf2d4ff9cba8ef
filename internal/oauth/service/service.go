package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/waveer/oauth-gateway/internal/oauth/credentials"
	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/internal/oauth/token"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
)

// StateStore is the registry of pending authorization requests.
type StateStore interface {
	Create(ctx context.Context, st *models.AuthState) error
	Consume(ctx context.Context, tok string, now time.Time) (*models.AuthState, error)
	Delete(ctx context.Context, tok string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CodeStore is the registry of issued, unredeemed authorization codes.
// Redeem must be atomic with deletion.
type CodeStore interface {
	Create(ctx context.Context, c *models.AuthorizationCode) error
	Redeem(ctx context.Context, code string, now time.Time) (*models.AuthorizationCode, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CredentialStore is the external credential collaborator.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*credentials.Profile, error)
	FindByID(ctx context.Context, id string) (*credentials.Profile, error)
}

// ClientRegistry resolves registered clients. A single static entry is
// seeded today; the interface leaves room for more without touching
// the grant flow.
type ClientRegistry interface {
	Lookup(clientID string) (*models.Client, error)
	Validate(clientID string) bool
	ValidateWithSecret(clientID, secret string) bool
}

// Service orchestrates the authorization-code and refresh grant flows
// and enforces every cross-artifact invariant.
type Service struct {
	clients  ClientRegistry
	states   StateStore
	codes    CodeStore
	creds    CredentialStore
	tokens   *token.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	stateTTL time.Duration
	codeTTL  time.Duration
	now      func() time.Time
}

// Option configures a Service instance.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs the grant service.
func New(
	clients ClientRegistry,
	states StateStore,
	codes CodeStore,
	creds CredentialStore,
	tokens *token.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	stateTTL, codeTTL time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		clients:  clients,
		states:   states,
		codes:    codes,
		creds:    creds,
		tokens:   tokens,
		logger:   logger,
		metrics:  m,
		stateTTL: stateTTL,
		codeTTL:  codeTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}
