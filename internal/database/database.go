package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/steermate/steermate-backend-go/internal/config"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open opens the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if cfg.Driver == config.DriverSQLite {
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// sqlitePragmas must reach every pooled connection. Pragmas set with a
// one-off Exec only reach a single connection of the pool.
var sqlitePragmas = []struct {
	name, value string
}{
	{"foreign_keys", "1"},
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
}

// sqliteDSN adds the pragmas and time format the schema relies on, keeping
// any the caller already set. Disabling foreign keys is rejected since
// cascades and ownership checks depend on them.
func sqliteDSN(dsn string) (string, error) {
	path, rawQuery, _ := strings.Cut(dsn, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid sqlite dsn query: %w", err)
	}

	set := make(map[string]string)
	for _, p := range query["_pragma"] {
		name, value, _ := strings.Cut(p, "(")
		set[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSuffix(value, ")")
	}
	if v, ok := set["foreign_keys"]; ok {
		switch strings.ToLower(v) {
		case "1", "on", "true", "yes":
		default:
			return "", fmt.Errorf("sqlite dsn must not disable foreign_keys (got %q)", v)
		}
	}

	var extra []string
	for _, p := range sqlitePragmas {
		if _, ok := set[p.name]; !ok {
			extra = append(extra, "_pragma="+p.name+"("+p.value+")")
		}
	}
	if !query.Has("_time_format") {
		extra = append(extra, "_time_format=sqlite")
	}

	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if len(extra) == 0 {
		return dsn, nil
	}
	if rawQuery == "" {
		return path + "?" + strings.Join(extra, "&"), nil
	}
	return path + "?" + rawQuery + "&" + strings.Join(extra, "&"), nil
}

// Transaction executes a function within a database transaction
func Transaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
