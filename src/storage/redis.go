package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCatalogKey is where the external poller publishes the catalog
	DefaultCatalogKey = "catalog:snapshot"
	DefaultCatalogTTL = 10 * time.Minute
)

// CatalogSnapshot is the cached form of the catalog
type CatalogSnapshot struct {
	Products  []pkg.Product `json:"products"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewRedisClient parses a redis URL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// CatalogCache stores catalog snapshots in Redis
type CatalogCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCatalogCache wraps a client. Zero ttl uses DefaultCatalogTTL.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		client: client,
		key:    DefaultCatalogKey,
		ttl:    ttl,
	}
}

// WithKey returns a cache bound to another key
func (c *CatalogCache) WithKey(key string) *CatalogCache {
	return &CatalogCache{client: c.client, key: key, ttl: c.ttl}
}

// Save stores the snapshot with the cache TTL
func (c *CatalogCache) Save(ctx context.Context, snapshot CatalogSnapshot) error {
	data, err := sonic.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set catalog snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing key yields model.ErrCatalogNotFound.
func (c *CatalogCache) Load(ctx context.Context) (CatalogSnapshot, error) {
	var snapshot CatalogSnapshot

	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snapshot, model.ErrCatalogNotFound
		}
		return snapshot, fmt.Errorf("failed to get catalog snapshot: %w", err)
	}

	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to unmarshal catalog snapshot: %w", err)
	}
	return snapshot, nil
}

// TTL reports the remaining lifetime of the cached snapshot
func (c *CatalogCache) TTL(ctx context.Context) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	return ttl, nil
}

// Delete drops the cached snapshot
func (c *CatalogCache) Delete(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog snapshot: %w", err)
	}
	return nil
}

// Ping tests Redis connection
func (c *CatalogCache) Ping(ctx context.Context) error {
	_, err := c.client.Ping(ctx).Result()
	return err
}

// Close closes the Redis connection
func (c *CatalogCache) Close() error {
	return c.client.Close()
}
