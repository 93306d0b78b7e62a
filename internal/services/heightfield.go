package services

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

const (
	// TileSize is the sample width/height of a standard elevation tile.
	TileSize = 256

	// HeightScale converts decoded meters to world units. Tunable, but
	// every spatial constant in the engine assumes this value.
	HeightScale = 0.005
)

// HeightTile is one decoded raster elevation tile: a row-major array of
// scaled elevation samples. Immutable after decode except for the edge
// averaging performed once during stitching.
type HeightTile struct {
	Width   int
	Height  int
	Heights []float64
}

// At returns the sample at pixel (x, y). No bounds checking.
func (t *HeightTile) At(x, y int) float64 {
	return t.Heights[y*t.Width+x]
}

func (t *HeightTile) set(x, y int, h float64) {
	t.Heights[y*t.Width+x] = h
}

// DecodeTile converts a raster image to a height tile using the
// Terrarium encoding: red/green/blue encode a signed 16-bit meter
// elevation offset by 32768.
//
//	height = (r*256 + g + b/256) - 32768
//
// The actual image dimensions are used as-is; callers relying on
// TileSize must check Width/Height themselves.
func DecodeTile(img image.Image) *HeightTile {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tile := &HeightTile{
		Width:   w,
		Height:  h,
		Heights: make([]float64, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r := float64(r16 >> 8)
			g := float64(g16 >> 8)
			bb := float64(b16 >> 8)

			meters := (r*256 + g + bb/256) - 32768
			tile.Heights[y*w+x] = meters * HeightScale
		}
	}

	return tile
}

// DecodeTilePNG decodes raw PNG bytes into a height tile. A decode
// error means the tile slot stays empty; it never aborts a grid reload.
func DecodeTilePNG(data []byte) (*HeightTile, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tile png: %w", err)
	}
	return DecodeTile(img), nil
}
