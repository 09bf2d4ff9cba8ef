package code

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

var redeemDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "oauth_gateway_code_redeem_duration_ms",
	Help:    "Latency of authorization code redemptions in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const codeKeyPrefix = "oauth:code:"

// RedisStore is the Redis-backed code registry. GETDEL makes
// redemption a single atomic check-and-delete on the server, so the
// one-redemption invariant holds across gateway instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed code registry.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, c *models.AuthorizationCode) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal code: %w", err)
	}
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("authorization code already expired")
	}
	if err := s.client.Set(ctx, codeKeyPrefix+c.Code, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store code: %w: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

// Redeem fetches and deletes the code in one round trip. A second
// concurrent redemption observes redis.Nil and reports ErrNotFound.
func (s *RedisStore) Redeem(ctx context.Context, code string, now time.Time) (*models.AuthorizationCode, error) {
	start := time.Now()
	defer func() {
		redeemDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	payload, err := s.client.GetDel(ctx, codeKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redeem code: %w: %w", err, sentinel.ErrUnavailable)
	}
	var c models.AuthorizationCode
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("unmarshal code: %w", err)
	}
	if c.Expired(now) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return &c, nil
}

// DeleteExpired is a no-op for Redis; key TTLs expire entries natively.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
