// Package postgres implements the marketplace repositories on PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

const (
	uniqueViolation   = "23505"
	checkViolation    = "23514"
	numericOutOfRange = "22003"
)

// Config contains PostgreSQL connection configuration.
type Config struct {
	URL             string
	MaxConns        int32
	ConnectAttempts int
}

// Connect establishes a connection pool to PostgreSQL, retrying with
// exponential backoff while the database is not reachable yet.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Info().Int("attempts", attempt).Msg("connected to postgres")
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		if attempt < attempts {
			backoff := calcBackoff(attempt)
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Dur("backoff", backoff).
				Msg("postgres not reachable, retrying")
			if !sleep(ctx, backoff) {
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempts, lastErr)
}

// CollectPoolMetrics publishes pool statistics every interval until ctx is done.
func CollectPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	recordPoolMetrics(pool)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			recordPoolMetrics(pool)
		case <-ctx.Done():
			return
		}
	}
}

func recordPoolMetrics(pool *pgxpool.Pool) {
	stats := pool.Stat()
	metrics.DBPoolConnections.WithLabelValues("in_use").Set(float64(stats.AcquiredConns()))
	metrics.DBPoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	metrics.DBPoolConnections.WithLabelValues("max").Set(float64(stats.MaxConns()))
}

// calcBackoff returns exponential backoff duration capped at 16 seconds.
func calcBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<(attempt-1)) * time.Second
	if backoff > 16*time.Second {
		backoff = 16 * time.Second
	}
	return backoff
}

// sleep waits for duration or context cancellation. Returns false if cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// writeError reports values the schema rejected (CHECK constraints, numeric
// overflow) as domain.ErrInvalidInput and wraps anything else with op.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolation, numericOutOfRange:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
