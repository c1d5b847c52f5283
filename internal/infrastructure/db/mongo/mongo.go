package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers     = "users"
	collectionJobs      = "jobs"
	collectionProposals = "proposals"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every repository relies on. The unique
// email index is what turns concurrent duplicate registrations into
// domain.ErrDuplicateEmail, so startup must fail if it cannot be built.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, ensure := range []func(context.Context) error{
		NewUserRepository(db).EnsureIndexes,
		NewJobRepository(db).EnsureIndexes,
		NewProposalRepository(db).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	log.Info().Str("database", db.Name()).Msg("mongo indexes ensured")
	return nil
}

// Pinger adapts a client to the readiness probe.
type Pinger struct {
	Client *mongo.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, nil)
}
