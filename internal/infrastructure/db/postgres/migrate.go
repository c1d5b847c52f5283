package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies all pending up migrations embedded in the binary.
func Migrate(dsn string, log zerolog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration: open source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, toPgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Error().Err(srcErr).Msg("migration source close failed")
		}
		if dbErr != nil {
			log.Error().Err(dbErr).Msg("migration database close failed")
		}
	}()
	m.Log = migrateLogger{log: log}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: database is dirty at version %d", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Uint("version", version).Msg("schema up to date")
			return nil
		}
		return fmt.Errorf("migration: up: %w", err)
	}

	newVersion, _, _ := m.Version()
	log.Info().Uint("from_version", version).Uint("to_version", newVersion).Msg("schema migrated")
	return nil
}

// toPgx5DSN rewrites postgres:// URLs to the pgx5:// scheme golang-migrate
// registers for the pgx v5 driver.
func toPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

type migrateLogger struct {
	log zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}

func (l migrateLogger) Verbose() bool { return false }
