// internal/common/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
)

const (
	defaultMaxOpen = 5
	defaultMaxIdle = 2
)

// PostgresClient holds the pool the database agent queries through.
type PostgresClient struct {
	db *sqlx.DB
}

// NewPostgres opens a lazy pool; nothing is dialled until first use.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	if !cfg.Configured() {
		return nil, apperrors.NewConfigurationMissingError("database.postgres")
	}

	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxConnections, cfg.MaxIdle
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = min(defaultMaxIdle, maxOpen)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{db: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	return c.db.Close()
}

func (c *PostgresClient) GetDB() *sqlx.DB {
	return c.db
}
