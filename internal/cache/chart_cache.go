// Package cache stores rendered chart view models in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpggio/gantry/internal/domain/activity"
)

const (
	keyPrefix     = "gantry:chart:"
	keyGeneration = keyPrefix + "gen"
)

// ChartCache memoizes chart results. Entries are namespaced by a generation
// counter, so bumping the counter retires every cached chart at once.
type ChartCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewChartCache returns a ChartCache using rdb.
func NewChartCache(rdb *redis.Client, ttl time.Duration) *ChartCache {
	return &ChartCache{rdb: rdb, ttl: ttl}
}

// Connect opens a Redis client and checks that it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Get decodes the cached value for key into dst. It reports false on a miss.
func (c *ChartCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}
	b, err := c.rdb.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key for the current generation.
func (c *ChartCache) Set(ctx context.Context, key string, v any) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, entryKey(gen, key), b, c.ttl).Err()
}

// Invalidate retires every cached chart. Old entries expire with their TTL.
func (c *ChartCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, keyGeneration).Err()
}

// Listener returns an activity listener that invalidates the cache after
// every logged mutation.
func (c *ChartCache) Listener(logger *slog.Logger) activity.Listener {
	return func(ctx context.Context, entry activity.ActivityEntry) {
		if err := c.Invalidate(ctx); err != nil && logger != nil {
			logger.Warn("chart cache invalidation failed", "activity", entry.ActivityType, "error", err)
		}
	}
}

func (c *ChartCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

func entryKey(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}
