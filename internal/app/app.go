package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/config"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/dictionary"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/game"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/game/scoring"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/logging"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/profile"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/server"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/pkg/http/ws"
)

// Application aggregates shared infrastructure (storage, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, storage driver, optional Redis cache,
// the game engine and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("storage_driver", cfg.Storage.Driver).Msg("starting application bootstrap")

	dict, err := dictionary.Open(cfg.Dictionary.File, cfg.Dictionary.MediaDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}

	var (
		persister profile.Persister
		pool      *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err = pgxpool.New(ctx, cfg.Storage.Postgres.DSN()+" pool_max_conns=10")
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		persister = profile.NewPostgresStore(pool)
	default:
		persister = profile.NewFileStore(cfg.Storage.GameDataFile)
	}

	var (
		redisClient *redis.Client
		lbCache     *profile.LeaderboardCache
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		lbCache = profile.NewLeaderboardCache(redisClient, "lb", logger)
	}

	profiles, err := profile.NewStore(ctx, persister, lbCache, profile.StoreOptions{
		TopN: cfg.Game.LeaderboardTopN,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load profile store: %w", err)
	}

	engine := game.NewService(
		game.NewRoomStore(nil),
		game.NewGenerator(nil),
		scoring.NewEngine(scoring.DefaultConfig()),
		dict,
		profiles,
		game.ServiceOptions{
			MultiplayerQuestions: cfg.Game.MultiplayerQuestions,
			SoloQuestions:        cfg.Game.SoloQuestions,
			RoomCapacity:         cfg.Game.RoomCapacity,
		},
		logger,
	)

	wsHub := ws.NewHub(logger)
	handlers := server.NewHandlers(engine, profiles, lbCache, dict, wsHub, logger)
	apiServer := server.NewHTTPServer(cfg, handlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
