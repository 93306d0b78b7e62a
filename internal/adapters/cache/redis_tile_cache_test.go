package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"topo-sunlight-service/internal/adapters/tiles"
	"topo-sunlight-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisTileCacheReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := tiles.NewFlatSource(120)
	c := NewRedisTileCache(rdb, source, time.Hour)

	key := domain.TileKey{Zoom: 12, X: 2048, Y: 2048}

	first, err := c.FetchTile(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.Fetches() != 1 {
		t.Fatalf("fetches after miss = %d, want 1", source.Fetches())
	}

	second, err := c.FetchTile(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.Fetches() != 1 {
		t.Fatalf("fetches after hit = %d, want 1 (served from cache)", source.Fetches())
	}
	if !bytes.Equal(first, second) {
		t.Fatal("cached bytes differ from source bytes")
	}

	// A different key is its own entry.
	other := domain.TileKey{Zoom: 12, X: 2049, Y: 2048}
	if _, err := c.FetchTile(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.Fetches() != 2 {
		t.Fatalf("fetches after second key = %d, want 2", source.Fetches())
	}
}

func TestRedisTileCacheDegradesWithoutRedis(t *testing.T) {
	// Point the client at a closed port: every cache op fails, the
	// wrapped source still serves.
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	source := tiles.NewFlatSource(0)
	c := NewRedisTileCache(rdb, source, time.Hour)

	if _, err := c.FetchTile(context.Background(), domain.TileKey{Zoom: 12, X: 1, Y: 1}); err != nil {
		t.Fatalf("cache must degrade to the source, got %v", err)
	}
	if source.Fetches() != 1 {
		t.Fatalf("fetches = %d, want 1", source.Fetches())
	}
}
