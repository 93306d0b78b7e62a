package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"topo-sunlight-service/internal/domain"
)

// SyntheticSource serves PNG-encoded Terrarium tiles generated from a
// height function. Used by tests and offline runs in place of the
// network source.
type SyntheticSource struct {
	// Elevation in meters for a pixel of a tile. Nil means flat zero.
	Elevation func(key domain.TileKey, px, py int) float64
	// Err, when set, makes every fetch fail with it.
	Err error

	mu      sync.Mutex
	fetches int
}

// NewFlatSource returns a source where every sample is the given
// elevation in meters.
func NewFlatSource(meters float64) *SyntheticSource {
	return &SyntheticSource{
		Elevation: func(domain.TileKey, int, int) float64 { return meters },
	}
}

func (s *SyntheticSource) FetchTile(ctx context.Context, key domain.TileKey) ([]byte, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	const size = 256
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			meters := 0.0
			if s.Elevation != nil {
				meters = s.Elevation(key, x, y)
			}
			img.SetNRGBA(x, y, encodeTerrarium(meters))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fetches reports how many times FetchTile was called.
func (s *SyntheticSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// encodeTerrarium is the inverse of the engine's tile decoding:
// value = meters + 32768 split across the red/green/blue channels.
func encodeTerrarium(meters float64) color.NRGBA {
	v := meters + 32768
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	whole := math.Floor(v)
	return color.NRGBA{
		R: uint8(int(whole) >> 8),
		G: uint8(int(whole) & 0xff),
		B: uint8((v - whole) * 256),
		A: 255,
	}
}
