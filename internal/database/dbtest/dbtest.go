// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/steermate/steermate-backend-go/internal/config"
	"github.com/steermate/steermate-backend-go/internal/database"
)

// New returns a migrated SQLite database in a temp dir, closed on cleanup.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mm, err := database.NewMigrationManager(db, zap.NewNop())
	if err != nil {
		t.Fatalf("migration manager: %v", err)
	}
	if _, err := mm.RunMigrations(ctx); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
