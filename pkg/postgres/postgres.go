package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"pocket-ledger/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

// NewPool connects to PostgreSQL, retrying with exponential backoff while the
// database is still starting up.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	backoff := cfg.RetryInterval
	if backoff <= 0 {
		backoff = time.Second
	}

	for attempt := 1; ; attempt++ {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				logger.Info("Database connection established",
					zap.String("host", cfg.Host),
					zap.String("database", cfg.DBName),
					zap.Int("attempt", attempt),
				)
				return pool, nil
			}
			pool.Close()
		}

		if attempt >= retries {
			break
		}
		logger.Warn("Database connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("retries", retries),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, err)
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("Database schema is up to date")
	return nil
}
