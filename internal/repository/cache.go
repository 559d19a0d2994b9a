package repository

import (
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
)

// newCacheLayer wraps the shared Redis client in a two-level cache.
// A nil client disables caching and repositories read straight from the database.
func newCacheLayer(redisClient *redis.Client, keyPrefix string, defaultTTL time.Duration) *cache.CacheLayer {
	if redisClient == nil {
		return nil
	}
	return cache.NewCacheLayerFromClient(redisClient, cache.CacheConfig{
		L1Enabled:  true,
		L1MaxItems: 1000,
		L1TTL:      30 * time.Second,
		DefaultTTL: defaultTTL,
		KeyPrefix:  keyPrefix,
	})
}
