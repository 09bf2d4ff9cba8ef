package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/waveer/oauth-gateway/internal/oauth/credentials"
	"github.com/waveer/oauth-gateway/internal/oauth/handler"
	"github.com/waveer/oauth-gateway/internal/oauth/models"
	"github.com/waveer/oauth-gateway/internal/oauth/service"
	codestore "github.com/waveer/oauth-gateway/internal/oauth/store/code"
	statestore "github.com/waveer/oauth-gateway/internal/oauth/store/state"
	"github.com/waveer/oauth-gateway/internal/oauth/sweeper"
	"github.com/waveer/oauth-gateway/internal/oauth/token"
	"github.com/waveer/oauth-gateway/internal/platform/config"
	"github.com/waveer/oauth-gateway/internal/platform/httpserver"
	"github.com/waveer/oauth-gateway/internal/platform/logger"
	"github.com/waveer/oauth-gateway/internal/platform/metrics"
	platformredis "github.com/waveer/oauth-gateway/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle
// small. Protocol logic lives in the internal/oauth packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.IsDevelopment())
	m := metrics.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var states service.StateStore
	var codes service.CodeStore
	if cfg.RedisURL != "" {
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer client.Close()
		states = statestore.NewRedis(client.Client)
		codes = codestore.NewRedis(client.Client)
		log.Info("using redis registries")
	} else {
		states = statestore.NewMemory()
		codes = codestore.NewMemory()
		log.Info("using in-memory registries")
	}

	var creds service.CredentialStore
	if cfg.PostgresDSN != "" {
		pg, err := credentials.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer pg.Close()
		creds = pg
	} else {
		if !cfg.IsDevelopment() {
			log.Error("POSTGRES_DSN is required outside development")
			os.Exit(1)
		}
		mem := credentials.NewMemory()
		if _, err := mem.Seed("demo@example.com", "Demo User", "demo-password"); err != nil {
			log.Error("seed credential store", "error", err.Error())
			os.Exit(1)
		}
		creds = mem
		log.Warn("using seeded in-memory credential store", "email", "demo@example.com")
	}

	clients := service.NewStaticClientRegistry(models.Client{
		ID:     cfg.ClientID,
		Secret: cfg.ClientSecret,
	})
	tokens := token.NewService(cfg.JWTSigningKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	grants := service.New(clients, states, codes, creds, tokens, log, m, cfg.StateTTL, cfg.AuthCodeTTL)

	h := handler.New(grants, token.NewMiddlewareAdapter(tokens), log, m, cfg.CORSAllowedOrigins)
	router := chi.NewRouter()
	h.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting oauth gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.SweepEnabled {
		sw := sweeper.New(map[string]sweeper.Registry{
			"state": states,
			"code":  codes,
		}, cfg.SweepInterval, log, m)
		g.Go(func() error {
			err := sw.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
