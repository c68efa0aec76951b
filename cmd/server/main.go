package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/boxvote/internal/adapter/bbolt"
	"github.com/pscheid92/boxvote/internal/adapter/fallback"
	"github.com/pscheid92/boxvote/internal/adapter/httpserver"
	"github.com/pscheid92/boxvote/internal/adapter/memory"
	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/adapter/redis"
	"github.com/pscheid92/boxvote/internal/adapter/websocket"
	"github.com/pscheid92/boxvote/internal/app"
	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/platform/config"
	"github.com/pscheid92/boxvote/internal/platform/logging"
	"github.com/pscheid92/boxvote/internal/platform/version"
	"github.com/pscheid92/boxvote/internal/round"
)

const shutdownTimeout = 10 * time.Second

type storeSetup struct {
	repo         domain.StateRepository
	healthChecks []httpserver.HealthCheck
	close        func()
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore opens the configured device store and wraps it so storage failures degrade the
// session to memory instead of surfacing to the visitor. A store that can not be opened at all
// starts the session degraded.
func setupStore(ctx context.Context, cfg *config.Config, roundMetrics *metrics.RoundMetrics) storeSetup {
	type pingStore interface {
		domain.StateRepository
		domain.StateSwapper
		Ping(ctx context.Context) error
	}

	var (
		primary pingStore
		closeFn = func() {}
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn("Using in-memory state, votes are lost on restart")
		return storeSetup{repo: memory.NewStateStore(), close: closeFn}

	case config.BackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := redis.NewClient(connectCtx, cfg.RedisURL)
		if err != nil {
			slog.Warn("Failed to connect to Redis", "error", err)
			return degradedStore(roundMetrics)
		}
		primary = redis.NewStateStore(client, cfg.SeasonKey)
		closeFn = func() { _ = client.Close() }

	default:
		store, err := bbolt.Open(ctx, cfg.BoltPath, cfg.SeasonKey)
		if err != nil {
			slog.Warn("Failed to open state file", "path", cfg.BoltPath, "error", err)
			return degradedStore(roundMetrics)
		}
		primary = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				slog.Error("Failed to close state file", "error", err)
			}
		}
	}

	degradable := fallback.NewStateStore(primary, uint32(cfg.StoreFailureThreshold), func(degraded bool) {
		if degraded {
			roundMetrics.StoreDegraded.Set(1)
		}
	})

	return storeSetup{
		repo: degradable,
		healthChecks: []httpserver.HealthCheck{
			{Name: "state_store", Check: primary.Ping},
			{Name: "store_mode", Check: storeModeCheck(degradable.Degraded)},
		},
		close: closeFn,
	}
}

// degradedStore is the session used when no device store could be opened.
func degradedStore(roundMetrics *metrics.RoundMetrics) storeSetup {
	slog.Error("State store unavailable, continuing with an in-memory session; votes will not survive a restart")
	roundMetrics.StoreDegraded.Set(1)
	return storeSetup{
		repo: memory.NewStateStore(),
		healthChecks: []httpserver.HealthCheck{
			{Name: "store_mode", Check: storeModeCheck(func() bool { return true })},
		},
		close: func() {},
	}
}

func storeModeCheck(degraded func() bool) func(context.Context) error {
	return func(context.Context) error {
		if degraded() {
			return errors.New("running on in-memory state")
		}
		return nil
	}
}

func runGracefulShutdown(srv *httpserver.Server, hub *websocket.Hub, stopTicker context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		stopTicker()
		hub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "build", version.Get().String(), "season", cfg.SeasonKey, "store", cfg.StoreBackend)

	reg := metrics.NewRegistry()
	voteMetrics := metrics.NewVoteMetrics(reg)
	roundMetrics := metrics.NewRoundMetrics(reg)
	viewerMetrics := metrics.NewViewerMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	store := setupStore(context.Background(), cfg, roundMetrics)
	defer store.close()

	engine := round.NewEngine(domain.Round{
		PublishTime: cfg.PublishTime,
		Duration:    cfg.RoundDuration(),
	}, clock, cfg.LeaderboardSize)
	slog.Info("Round configured", "publish_time", cfg.PublishTime.UTC(), "end_time", engine.Round().EndTime().UTC())

	hub := websocket.NewHub(websocket.NewCheckOrigin(cfg.PublicURL, cfg.IsDevelopment()), viewerMetrics)
	appSvc := app.NewService(store.repo, engine, hub, voteMetrics, roundMetrics)

	srv, err := httpserver.NewServer(cfg, appSvc, hub, metrics.Handler(reg), httpMetrics, store.healthChecks)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	tickerCtx, stopTicker := context.WithCancel(context.Background())
	ticker := app.NewRenderTicker(appSvc, hub, clock, cfg.TickInterval, roundMetrics)
	go ticker.Run(tickerCtx)

	done := runGracefulShutdown(srv, hub, stopTicker)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
