package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisTileCache is a read-through byte cache wrapped around any
// TileSource. Elevation tiles are immutable in practice, so entries
// only expire to bound memory, not for correctness.
//
// Every Redis failure degrades to the wrapped source: a broken cache
// slows reloads down but never breaks them.
type RedisTileCache struct {
	rdb  *redis.Client
	next ports.TileSource
	ttl  time.Duration
}

func NewRedisTileCache(rdb *redis.Client, next ports.TileSource, ttl time.Duration) *RedisTileCache {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisTileCache{rdb: rdb, next: next, ttl: ttl}
}

func tileCacheKey(key domain.TileKey) string {
	return fmt.Sprintf("tile:%d/%d/%d", key.Zoom, key.X, key.Y)
}

func (c *RedisTileCache) FetchTile(ctx context.Context, key domain.TileKey) ([]byte, error) {
	k := tileCacheKey(key)

	data, err := c.rdb.Get(ctx, k).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("tile cache read failed: key=%s err=%v", k, err)
	}

	data, err = c.next.FetchTile(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, k, data, c.ttl).Err(); err != nil {
		log.Printf("tile cache write failed: key=%s err=%v", k, err)
	}

	return data, nil
}
