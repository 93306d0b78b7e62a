package ports

import (
	"context"
	"topo-sunlight-service/internal/domain"
)

// Contract for retrieving raw elevation tile bytes.
//
// Implementations may fetch over the network, read a cache, or serve
// synthetic data in tests. A failed fetch for one tile must never abort
// the fetches of its neighbors; the grid simply leaves that slot empty.
type TileSource interface {
	// Return the raw raster bytes for one tile key.
	FetchTile(ctx context.Context, key domain.TileKey) ([]byte, error)
}
