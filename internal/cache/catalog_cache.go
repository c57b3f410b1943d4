package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aether-industries/storefront-api/internal/models"
)

const (
	catalogSnapshotKey = "catalog:snapshot"
	catalogSnapshotTTL = 24 * time.Hour
)

// CatalogCache holds a Redis snapshot of the full normalized catalog. The
// public listing endpoint falls back to it when the database read fails, and
// a background worker keeps it fresh.
type CatalogCache struct {
	redis *RedisClient
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redis *RedisClient) *CatalogCache {
	return &CatalogCache{redis: redis}
}

// Set stores the catalog snapshot.
func (c *CatalogCache) Set(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, catalogSnapshotKey, string(data), catalogSnapshotTTL)
}

// Get returns the cached snapshot, or (nil, nil) when absent.
func (c *CatalogCache) Get(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, catalogSnapshotKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, err
	}
	return products, nil
}
