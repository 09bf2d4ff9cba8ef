package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

const stateKeyPrefix = "oauth:state:"

// RedisStore is the Redis-backed state registry for deployments where
// multiple instances share pending authorization requests. Entries
// carry a TTL so Redis expires them without a sweep.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed state registry.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, st *models.AuthState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	ttl := time.Until(st.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("state already expired")
	}
	if err := s.client.Set(ctx, stateKeyPrefix+st.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store state: %w: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, token string, now time.Time) (*models.AuthState, error) {
	payload, err := s.client.Get(ctx, stateKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("state not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch state: %w: %w", err, sentinel.ErrUnavailable)
	}
	var st models.AuthState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	// Redis TTL handles expiry; the explicit check covers clock skew
	// between the writer and this instance.
	if st.Expired(now) {
		_ = s.client.Del(ctx, stateKeyPrefix+token).Err()
		return nil, fmt.Errorf("state expired: %w", sentinel.ErrNotFound)
	}
	return &st, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, stateKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("delete state: %w: %w", err, sentinel.ErrUnavailable)
	}
	if n == 0 {
		return fmt.Errorf("state not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteExpired is a no-op for Redis; key TTLs expire entries natively.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
