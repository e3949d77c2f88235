package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "search:"

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ResultCache stores ranked records per site and query.
type ResultCache struct {
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewResultCache(client RedisClient, ttl time.Duration, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "result_cache"),
	}
}

// Key normalizes case and inner whitespace so equivalent queries share an entry.
func Key(site, query string) string {
	return keyPrefix + site + ":" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (c *ResultCache) Get(ctx context.Context, site, query string) ([]models.ItemRecord, error) {
	data, err := c.client.Get(ctx, Key(site, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var records []models.ItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode cached records: %w", err)
	}

	c.logger.Debug("cache hit", "site", site, "query", query, "count", len(records))
	return records, nil
}

func (c *ResultCache) Set(ctx context.Context, site, query string, records []models.ItemRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	if err := c.client.Set(ctx, Key(site, query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
