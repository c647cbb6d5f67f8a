// Package database wraps the sqlx Postgres connection used by the staging
// repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB is the slice of sqlx the repositories depend on.
type DB interface {
	Close() error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	Rebind(query string) string
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Unsafe() *sqlx.DB
}

// Config holds the Postgres connection settings
type Config struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryCount      int
}

// DatabaseInstance implements DB on top of *sqlx.DB
type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
}

// NewDatabaseInstance wraps an existing sqlx connection
func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
	}
}

// Connect opens the staging database, retrying on startup races with the
// database container.
func Connect(cfg Config, logger ectologger.Logger) (DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	attempts := cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	var db *sqlx.DB
	var err error
	for i := 0; i < attempts; i++ {
		db, err = sqlx.Connect(cfg.Driver, dsn)
		if err == nil {
			break
		}
		logger.WithError(err).Warnf("Database connection attempt %d/%d failed", i+1, attempts)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database %q: %w", cfg.Name, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.WithFields(map[string]any{
		"host": cfg.Host,
		"name": cfg.Name,
	}).Info("Connected to database")

	return NewDatabaseInstance(db, logger), nil
}
