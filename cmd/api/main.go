// Command api serves the marketplace HTTP API.
//
// @title           Marketplace API
// @version         1.0
// @description     Registration, login, profiles, jobs and proposals for a freelance marketplace.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/gigboard/marketplace-api/docs"
	"github.com/gigboard/marketplace-api/internal/api"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/core/service"
	"github.com/gigboard/marketplace-api/internal/infrastructure/config"
	mongostore "github.com/gigboard/marketplace-api/internal/infrastructure/db/mongo"
	pgstore "github.com/gigboard/marketplace-api/internal/infrastructure/db/postgres"
	redisstore "github.com/gigboard/marketplace-api/internal/infrastructure/db/redis"
	"github.com/gigboard/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/gigboard/marketplace-api/pkg/logger"
)

const poolMetricsInterval = 15 * time.Second

const serviceName = "marketplace-api"

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(rootCtx)
	if err != nil {
		// The configured logger does not exist yet; report through a plain one.
		fallback := logger.New(logger.Options{Output: os.Stderr, Service: serviceName})
		fallback.Error().Err(err).Msg("startup failure")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error().Err(err).Msg("startup failure")
		os.Exit(1)
	}
	log.Info().Msg("server stopped cleanly")
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stores is the persistence selected by STORE_DRIVER.
type stores struct {
	users     ports.UserRepository
	jobs      ports.JobRepository
	proposals ports.ProposalRepository
	health    []handlers.Dependency
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func run(rootCtx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Bool("enforce_role_policy", cfg.EnforceRolePolicy).
		Msg("configuration loaded")

	tokens, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	st, err := openStores(startupCtx, rootCtx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var idem ports.IdempotencyStore
	if cfg.Idempotency.Enabled {
		rdb, err := redisstore.Connect(startupCtx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)
		idem = redisstore.NewIdempotencyStore(rdb, cfg.Idempotency.TTL)
		st.health = append(st.health, handlers.Dependency{Name: "redis", Pinger: redisstore.Pinger{Client: rdb}})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	policy := service.NewAccessPolicy(cfg.EnforceRolePolicy)
	router := api.NewRouter(api.Dependencies{
		Log:         log,
		FrontendURL: cfg.FrontendURL,
		Tokens:      tokens,
		Policy:      policy,
		Auth:        service.NewAuthService(st.users, tokens, log),
		Profiles:    service.NewProfileService(st.users, st.jobs, st.proposals, policy, log),
		Jobs:        service.NewJobService(st.jobs, idem, policy, log),
		Proposals:   service.NewProposalService(st.jobs, st.proposals, idem, policy, log),
		Health:      handlers.NewHealthHandler(st.health...),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStores connects the configured driver. Background workers are bound to
// rootCtx so they stop with the process, not with the startup deadline.
func openStores(ctx, rootCtx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db, log); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
		return &stores{
			users:     mongostore.NewUserRepository(db),
			jobs:      mongostore.NewJobRepository(db),
			proposals: mongostore.NewProposalRepository(db),
			health:    []handlers.Dependency{{Name: "mongodb", Pinger: mongostore.Pinger{Client: client}}},
			closers: []func(){func() {
				log.Info().Msg("closing mongo client")
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error().Err(err).Msg("mongo disconnect")
				}
			}},
		}, nil

	default:
		pool, err := pgstore.Connect(ctx, pgstore.Config{
			URL:             cfg.Postgres.URL,
			MaxConns:        cfg.Postgres.MaxConns,
			ConnectAttempts: cfg.Postgres.ConnectAttempts,
		}, log)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := pgstore.Migrate(cfg.Postgres.URL, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		go pgstore.CollectPoolMetrics(rootCtx, pool, poolMetricsInterval)

		return &stores{
			users:     pgstore.NewUserRepository(pool),
			jobs:      pgstore.NewJobRepository(pool),
			proposals: pgstore.NewProposalRepository(pool),
			health:    []handlers.Dependency{{Name: "postgres", Pinger: pool}},
			closers: []func(){func() {
				log.Info().Msg("closing postgres pool")
				pool.Close()
			}},
		}, nil
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	log.Info().Msg("closing redis client")
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
