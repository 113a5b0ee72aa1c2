// Package sqlstore implements storage.OrganisationRepository on PostgreSQL
// (pgx) or SQLite through sqlx, with goose migrations embedded per dialect.
package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Use pgx via database/sql
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds database connection configuration.
type Config struct {
	Driver   string `yaml:"driver"` // postgres, sqlite or memory
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

type dialect struct {
	sqlDriver string
	goose     string
	dir       string
	pragmas   []string
}

var dialects = map[string]dialect{
	DriverPostgres: {sqlDriver: "pgx", goose: "postgres", dir: "migrations/postgres"},
	DriverSQLite: {
		sqlDriver: "sqlite",
		goose:     "sqlite3",
		dir:       "migrations/sqlite",
		pragmas:   []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"},
	},
}

// DB wraps the SQL connection.
type DB struct {
	*sqlx.DB
	driver string
}

// Open creates a new database connection.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(d.sqlDriver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch {
	case cfg.Driver == DriverSQLite:
		// One writer; also keeps a ":memory:" database on a single connection.
		db.SetMaxOpenConns(1)
	case cfg.MaxConns > 0:
		db.SetMaxOpenConns(cfg.MaxConns)
	default:
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if cfg.Driver != DriverSQLite {
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range d.pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies all pending migrations for the dialect.
func (db *DB) Migrate(ctx context.Context) error {
	d := dialects[db.driver]

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB.DB, d.dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func (db *DB) MigrationVersion(ctx context.Context) (int64, error) {
	d := dialects[db.driver]

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.goose); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db.DB.DB)
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
