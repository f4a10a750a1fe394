package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB is what repositories need from a connection pool.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Config holds the connection settings for a PostgreSQL database.
type Config struct {
	Driver          string
	Host            string
	Port            string
	UserName        string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string for the config.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.UserName, c.Password, c.Name, c.SSLMode)
}

type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
}

// Open creates the connection pool. No connection is made until first use.
func Open(config Config, logger ectologger.Logger) (*DatabaseInstance, error) {
	driver := config.Driver
	if driver == "" {
		driver = "postgres"
	}

	db, err := sqlx.Open(driver, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	return &DatabaseInstance{DB: db, logger: logger}, nil
}

func (db *DatabaseInstance) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return RunInTx(ctx, db.DB, db.logger, fn)
}
