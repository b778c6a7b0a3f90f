package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pocket-ledger/internal/receipt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scanCachePrefix = "receipt:ocr:"

// CachedScan is the user-independent result of scanning one file. Category
// suggestions depend on the user's catalog and are never cached.
type CachedScan struct {
	ExtractedText string                `json:"extracted_text"`
	Receipt       receipt.ParsedReceipt `json:"receipt"`
}

// ScanCache memoizes OCR and parsing by file content hash. A cache built on a
// nil client misses on every lookup and ignores writes.
type ScanCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewScanCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ScanCache {
	return &ScanCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ScanCache) Get(ctx context.Context, contentHash string) (*CachedScan, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, scanCachePrefix+contentHash).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Scan cache lookup failed", zap.Error(err))
		}
		return nil, false
	}

	var cached CachedScan
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("Dropping undecodable scan cache entry", zap.String("hash", contentHash), zap.Error(err))
		_ = c.client.Del(ctx, scanCachePrefix+contentHash).Err()
		return nil, false
	}
	return &cached, true
}

func (c *ScanCache) Set(ctx context.Context, contentHash string, scan CachedScan) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(scan)
	if err != nil {
		c.logger.Warn("Failed to encode scan cache entry", zap.Error(err))
		return
	}
	if err := c.client.SetEx(ctx, scanCachePrefix+contentHash, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Scan cache write failed", zap.Error(err))
	}
}
