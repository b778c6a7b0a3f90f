package redisclient

import (
	"context"
	"fmt"
	"time"

	"pocket-ledger/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to Redis. It returns a nil client and no error when no
// address is configured, in which case callers run without a cache.
func NewClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Info("Redis address not configured, scan cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.Addr)
	if err != nil {
		// plain host:port
		opt = &redis.Options{Addr: cfg.Addr}
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", opt.Addr), zap.Int("db", opt.DB))
	return client, nil
}
