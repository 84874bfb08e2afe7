package database

import (
	"context"
	"fmt"
	"io/fs"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "github.com/mattn/go-sqlite3"    // sqlite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Driver string `envconfig:"DB_DRIVER" default:"sqlite3"`
	// DSN, when set, wins over the per-field settings below.
	DSN string `envconfig:"DB_DSN"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"circulation"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Path is the sqlite database file.
	Path string `envconfig:"DB_PATH" default:"circulation.db"`
}

// New opens the configured engine and applies the embedded migrations.
// The schema is CREATE TABLE IF NOT EXISTS throughout, so startup is
// idempotent on an existing database.
func New(ctx context.Context, cfg *Config, migrationFiles fs.FS) (*sqlx.DB, error) {
	var driverName, dsn, dialect string
	switch cfg.Driver {
	case DriverPostgres:
		driverName, dialect = "pgx", "postgres"
		dsn = cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
				cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, cfg.Port), cfg.Name, cfg.SSLMode)
		}
	case DriverSQLite:
		driverName, dialect = "sqlite3", "sqlite3"
		dsn = cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", cfg.Path)
		}
	default:
		return nil, errors.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "db connect")
	}

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(dialect); err != nil {
		db.Close()
		return nil, err
	}
	// Dialect-specific DDL lives in a directory per dialect.
	if err := goose.Up(db.DB, dialect); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db migrate")
	}

	return db, nil
}
