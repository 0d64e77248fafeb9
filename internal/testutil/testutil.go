// Package testutil builds throwaway infrastructure for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/kelvin262292/storefront/internal/config"
	"github.com/kelvin262292/storefront/internal/database"
	"github.com/kelvin262292/storefront/internal/lib/cache"
	"github.com/kelvin262292/storefront/internal/lib/storage"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh SQLite database in t's temp dir with the full
// schema migrated. Constraint errors are translated to gorm's sentinel
// errors so they map the same way as on PostgreSQL.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.Tables()...))
	return db
}

// NewTestServer returns a Server backed by a SQLite database, no Redis and
// an asset directory under t's temp dir. Jobs are nil so enqueues are
// dropped.
func NewTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := config.Defaults()
	cfg.Storage.AssetDir = t.TempDir()
	cfg.Auth.SecretKey = "sk_test"

	log := zerolog.Nop()

	return &server.Server{
		Config:  cfg,
		Logger:  &log,
		DB:      database.Wrap(NewTestDB(t), &log),
		Cache:   cache.New(nil, "test:", &log),
		Storage: storage.New(cfg.Storage),
	}
}
