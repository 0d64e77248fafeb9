package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/kelvin262292/storefront/internal/config"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationVersionTable records the applied schema version.
const MigrationVersionTable = "schema_version"

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return subtree
}

// Migrate applies pending migrations. A target of 0 means "latest"; a lower
// version than the current one rolls back.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, MigrationVersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	if err := m.LoadMigrations(Migrations()); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	to := int32(len(m.Migrations))
	if target > 0 {
		if target > to {
			return fmt.Errorf("migration version %d does not exist, latest is %d", target, to)
		}
		to = target
	}

	if err := m.MigrateTo(ctx, to); err != nil {
		return err
	}

	if from == to {
		logger.Info().Msgf("database schema up to date, version %d", to)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, to)
	}
	return nil
}
