// Package cache holds the Redis-backed horoscope cache. The cache is
// advisory: any Redis failure degrades to an engine call, never to a
// request failure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aylinky/jyotir-backend/internal/astro"
)

type HoroscopeCache struct {
	rdb *redis.Client
}

func NewHoroscopeCache(addr, password string, db int) *HoroscopeCache {
	return &HoroscopeCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *HoroscopeCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *HoroscopeCache) Close() error {
	return c.rdb.Close()
}

func key(profileID uuid.UUID, period, target string) string {
	return fmt.Sprintf("horoscope:%s:%s:%s", profileID, period, target)
}

func (c *HoroscopeCache) Get(ctx context.Context, profileID uuid.UUID, period, target string) (*astro.Horoscope, bool) {
	data, err := c.rdb.Get(ctx, key(profileID, period, target)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("horoscope cache read failed", "error", err)
		}
		return nil, false
	}

	var h astro.Horoscope
	if err := json.Unmarshal(data, &h); err != nil {
		slog.Warn("horoscope cache entry corrupt", "error", err)
		return nil, false
	}
	return &h, true
}

func (c *HoroscopeCache) Set(ctx context.Context, profileID uuid.UUID, period, target string, h *astro.Horoscope, ttl time.Duration) {
	data, err := json.Marshal(h)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(profileID, period, target), data, ttl).Err(); err != nil {
		slog.Warn("horoscope cache write failed", "error", err)
	}
}

// Invalidate drops every cached horoscope for a profile. Called when
// birth facts are replaced.
func (c *HoroscopeCache) Invalidate(ctx context.Context, profileID uuid.UUID) {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("horoscope:%s:*", profileID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("horoscope cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("horoscope cache invalidation failed", "error", err)
		}
	}
}
