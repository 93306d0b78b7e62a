package tiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/platform/obs"
)

// DefaultBaseURL serves the public Terrarium elevation tile set.
const DefaultBaseURL = "https://s3.amazonaws.com/elevation-tiles-prod"

// TerrariumSource implements TileSource over HTTP using the Terrarium
// URL scheme {base}/terrarium/{z}/{x}/{y}.png.
//
// The source does no caching of its own; wrap it (e.g. with the Redis
// tile cache) when repeated fetches matter. Safe for concurrent use.
type TerrariumSource struct {
	session *http.Client
	baseURL string
}

func NewTerrariumSource(baseURL string) *TerrariumSource {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	return &TerrariumSource{
		session: &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchTile downloads the raw PNG bytes for one tile key.
func (s *TerrariumSource) FetchTile(ctx context.Context, key domain.TileKey) (_ []byte, err error) {
	defer obs.Time(ctx, "tiles.FetchTile")(&err)

	url := fmt.Sprintf("%s/terrarium/%d/%d/%d.png", s.baseURL, key.Zoom, key.X, key.Y)

	resp, err := s.doWithRetry(ctx, func() (*http.Request, error) {
		return s.newRequest(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: read body: %w", key, err)
	}

	return data, nil
}
