package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveer/oauth-gateway/internal/oauth/models"
	codestore "github.com/waveer/oauth-gateway/internal/oauth/store/code"
	statestore "github.com/waveer/oauth-gateway/internal/oauth/store/state"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

func Test_RunSweepsUntilCancelled(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	states := statestore.NewMemory()
	require.NoError(t, states.Create(ctx, &models.AuthState{
		Token:     "stale",
		ClientID:  "c1",
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-50 * time.Minute),
	}))
	codes := codestore.NewMemory()
	require.NoError(t, codes.Create(ctx, &models.AuthorizationCode{
		Code:      "stale",
		ClientID:  "c1",
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-50 * time.Minute),
	}))

	s := New(
		map[string]Registry{"state": states, "code": codes},
		5*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
	)

	runCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	err := s.Run(runCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = states.Consume(ctx, "stale", now.Add(-55*time.Minute))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = codes.Redeem(ctx, "stale", now.Add(-55*time.Minute))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func Test_SweepToleratesRegistryFailure(t *testing.T) {
	s := New(
		map[string]Registry{"broken": failingRegistry{}},
		time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
	)

	// A failing registry must not stop the loop.
	runCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Run(runCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingRegistry struct{}

func (failingRegistry) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("redis: connection refused")
}
