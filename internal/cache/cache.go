// Package cache provides the catalog read-through cache. Entries are stored
// under keys that embed a generation counter; bumping the generation makes
// every older entry unreachable at once and lets TTL reclaim it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a catalog entry may be served
const DefaultTTL = 5 * time.Minute

// Slot addresses an entry under the generation that was current when Get
// ran. A Set through a slot taken before an Invalidate lands in the old
// generation and is never served.
type Slot struct {
	key string
}

// Catalog caches catalog reads as JSON
type Catalog interface {
	// Get decodes the entry into dst and reports whether it was found. The
	// returned slot is where a miss should be filled.
	Get(ctx context.Context, key string, dst any) (Slot, bool)
	Set(ctx context.Context, slot Slot, value any)
	// Invalidate drops every entry written so far
	Invalidate(ctx context.Context)
}

type redisCatalog struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCatalog creates a Catalog on top of a redis client. Redis errors
// are logged and reported as misses so callers fall back to the database.
func NewRedisCatalog(client *redis.Client, ttl time.Duration, logger *zap.Logger) Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCatalog{
		client: client,
		prefix: "catalog",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisCatalog) generationKey() string {
	return c.prefix + ":generation"
}

func (c *redisCatalog) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisCatalog) entryKey(ctx context.Context, key string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", c.prefix, gen, key), nil
}

func (c *redisCatalog) Get(ctx context.Context, key string, dst any) (Slot, bool) {
	entryKey, err := c.entryKey(ctx, key)
	if err != nil {
		c.logger.Warn("Catalog cache unavailable", zap.Error(err))
		metrics.CacheMisses.Inc()
		return Slot{}, false
	}
	slot := Slot{key: entryKey}

	data, err := c.client.Get(ctx, entryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read catalog cache", zap.String("key", entryKey), zap.Error(err))
		}
		metrics.CacheMisses.Inc()
		return slot, false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Discarding undecodable catalog entry", zap.String("key", entryKey), zap.Error(err))
		metrics.CacheMisses.Inc()
		return slot, false
	}

	metrics.CacheHits.Inc()
	return slot, true
}

func (c *redisCatalog) Set(ctx context.Context, slot Slot, value any) {
	if slot.key == "" {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode catalog entry", zap.String("key", slot.key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, slot.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write catalog cache", zap.String("key", slot.key), zap.Error(err))
	}
}

func (c *redisCatalog) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		c.logger.Error("Failed to invalidate catalog cache", zap.Error(err))
	}
}

type noopCatalog struct{}

// NewNoop returns a Catalog that never hits, used when Redis is disabled
func NewNoop() Catalog {
	return noopCatalog{}
}

func (noopCatalog) Get(context.Context, string, any) (Slot, bool) { return Slot{}, false }
func (noopCatalog) Set(context.Context, Slot, any)               {}
func (noopCatalog) Invalidate(context.Context)                   {}
