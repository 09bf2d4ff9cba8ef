// Package sweeper removes expired registry entries in the background.
// Lookups already treat expired entries as absent, so the sweep only
// bounds memory growth; it is safe to disable.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/waveer/oauth-gateway/internal/platform/metrics"
)

// Registry is any store with a bulk expiry deletion primitive.
type Registry interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically deletes expired entries from its registries.
type Sweeper struct {
	registries map[string]Registry
	interval   time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New constructs a sweeper over named registries.
func New(registries map[string]Registry, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		registries: registries,
		interval:   interval,
		logger:     logger,
		metrics:    m,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	for name, registry := range s.registries {
		deleted, err := registry.DeleteExpired(ctx, now)
		if err != nil {
			s.logger.WarnContext(ctx, "sweep failed", "registry", name, "error", err.Error())
			continue
		}
		if deleted > 0 {
			s.metrics.SweeperDeletions.WithLabelValues(name).Add(float64(deleted))
			s.logger.DebugContext(ctx, "swept expired entries", "registry", name, "deleted", deleted)
		}
	}
}
