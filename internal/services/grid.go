package services

import (
	"context"
	"log"
	"math"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const (
	// BaseZoom and BaseTileWorldSize anchor the world-unit scale: a
	// tile at BaseZoom spans BaseTileWorldSize world units, and every
	// deeper zoom halves that span.
	BaseZoom          = 12
	BaseTileWorldSize = 20.0

	// maxConcurrentTileFetches bounds the reload fan-out.
	maxConcurrentTileFetches = 8
)

// TileWorldSize returns the world-unit span of one tile at a zoom.
func TileWorldSize(zoom int) float64 {
	return BaseTileWorldSize / math.Exp2(float64(zoom-BaseZoom))
}

// GridRadius returns how many tile rings to load around the center
// tile for a zoom level (5x5 tiles at zoom 12 up to 11x11 at zoom 15).
func GridRadius(zoom int) int {
	switch {
	case zoom <= 12:
		return 2
	case zoom == 13:
		return 3
	case zoom == 14:
		return 4
	default:
		return 5
	}
}

// TileSlot is one grid cell: either empty (tile missing, failed, or
// still loading) or holding a decoded tile.
type TileSlot struct {
	Tile *HeightTile
}

// Loaded reports whether the slot holds decoded tile data.
func (s TileSlot) Loaded() bool { return s.Tile != nil }

// HeightGrid owns an odd-sized square window of elevation tiles around
// a center tile and answers bilinear height queries at arbitrary
// continuous world coordinates.
//
// The world frame matches SunDirection: the grid center is the origin,
// +Z points south (increasing tile Y) and +X points west. Not safe for
// concurrent mutation; a reload must complete (install + stitch)
// before the grid is queried again.
type HeightGrid struct {
	center domain.GeoPoint
	zoom   int
	radius int

	// Fractional tile coordinate of the tracked location; the integer
	// parts identify the center tile, the fractional parts are the
	// sub-tile alignment offset.
	centerXf float64
	centerYf float64

	slots  [][]TileSlot // [row][col], (2*radius+1) per side
	loaded int
}

func NewHeightGrid() *HeightGrid {
	return &HeightGrid{}
}

// Recenter resets the grid window around a location and returns the
// tile keys the caller should fetch and install. All previous tile
// data is discarded.
func (g *HeightGrid) Recenter(loc domain.GeoPoint, zoom int) []domain.TileKey {
	g.center = loc
	g.zoom = zoom
	g.radius = GridRadius(zoom)
	g.centerXf, g.centerYf = LonLatToTile(loc.Lon, loc.Lat, zoom)

	side := 2*g.radius + 1
	g.slots = make([][]TileSlot, side)
	for i := range g.slots {
		g.slots[i] = make([]TileSlot, side)
	}
	g.loaded = 0

	cx := int(math.Floor(g.centerXf))
	cy := int(math.Floor(g.centerYf))

	keys := make([]domain.TileKey, 0, side*side)
	for row := -g.radius; row <= g.radius; row++ {
		for col := -g.radius; col <= g.radius; col++ {
			keys = append(keys, domain.TileKey{Zoom: zoom, X: cx + col, Y: cy + row})
		}
	}
	return keys
}

// Install stores a decoded tile into its grid slot. Keys outside the
// current window (or from a previous zoom) are ignored, which makes
// late installs from a superseded reload harmless.
func (g *HeightGrid) Install(key domain.TileKey, tile *HeightTile) {
	if g.slots == nil || key.Zoom != g.zoom || tile == nil {
		return
	}

	col := key.X - (int(math.Floor(g.centerXf)) - g.radius)
	row := key.Y - (int(math.Floor(g.centerYf)) - g.radius)
	side := 2*g.radius + 1
	if row < 0 || row >= side || col < 0 || col >= side {
		return
	}

	if !g.slots[row][col].Loaded() {
		g.loaded++
	}
	g.slots[row][col] = TileSlot{Tile: tile}
}

// HasData reports whether any tile has been installed. With no data
// the occlusion tester short-circuits to "always lit".
func (g *HeightGrid) HasData() bool { return g.loaded > 0 }

// Zoom returns the zoom level of the current window.
func (g *HeightGrid) Zoom() int { return g.zoom }

// Center returns the tracked location of the current window.
func (g *HeightGrid) Center() domain.GeoPoint { return g.center }

// StitchBoundaries reconciles duplicate edge samples between every
// pair of adjacent loaded tiles by writing the arithmetic mean of the
// shared samples into both tiles. Run exactly once per reload, after
// all installs and before any height queries. Visitation order is
// irrelevant: each shared edge is averaged exactly once.
func (g *HeightGrid) StitchBoundaries() {
	if g.slots == nil {
		return
	}
	side := 2*g.radius + 1

	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			cur := g.slots[row][col].Tile
			if cur == nil {
				continue
			}

			// Right neighbor: cur's last column vs neighbor's first.
			if col+1 < side {
				if right := g.slots[row][col+1].Tile; right != nil {
					stitchVerticalEdge(cur, right)
				}
			}

			// Bottom neighbor: cur's last row vs neighbor's first.
			if row+1 < side {
				if below := g.slots[row+1][col].Tile; below != nil {
					stitchHorizontalEdge(cur, below)
				}
			}
		}
	}
}

func stitchVerticalEdge(left, right *HeightTile) {
	n := left.Height
	if right.Height < n {
		n = right.Height
	}
	for y := 0; y < n; y++ {
		avg := (left.At(left.Width-1, y) + right.At(0, y)) / 2
		left.set(left.Width-1, y, avg)
		right.set(0, y, avg)
	}
}

func stitchHorizontalEdge(top, bottom *HeightTile) {
	n := top.Width
	if bottom.Width < n {
		n = bottom.Width
	}
	for x := 0; x < n; x++ {
		avg := (top.At(x, top.Height-1) + bottom.At(x, 0)) / 2
		top.set(x, top.Height-1, avg)
		bottom.set(x, 0, avg)
	}
}

// HeightAt returns the bilinearly interpolated terrain height at a
// continuous world coordinate.
//
// Outside the loaded window it returns -Inf, meaning "no terrain here,
// never occludes". An empty slot inside the window returns 0: assume
// flat ground while a tile is missing or still loading. The two
// fallbacks are deliberately distinct.
func (g *HeightGrid) HeightAt(worldX, worldZ float64) float64 {
	if g.slots == nil {
		return math.Inf(-1)
	}

	ts := TileWorldSize(g.zoom)
	tileXf := g.centerXf - worldX/ts
	tileYf := g.centerYf + worldZ/ts

	col := int(math.Floor(tileXf)) - (int(math.Floor(g.centerXf)) - g.radius)
	row := int(math.Floor(tileYf)) - (int(math.Floor(g.centerYf)) - g.radius)
	side := 2*g.radius + 1
	if row < 0 || row >= side || col < 0 || col >= side {
		return math.Inf(-1)
	}

	tile := g.slots[row][col].Tile
	if tile == nil {
		return 0
	}

	px := (tileXf - math.Floor(tileXf)) * float64(tile.Width)
	py := (tileYf - math.Floor(tileYf)) * float64(tile.Height)

	x0 := int(px)
	y0 := int(py)
	if x0 > tile.Width-1 {
		x0 = tile.Width - 1
	}
	if y0 > tile.Height-1 {
		y0 = tile.Height - 1
	}
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > tile.Width-1 {
		x1 = tile.Width - 1
	}
	if y1 > tile.Height-1 {
		y1 = tile.Height - 1
	}

	fx := px - float64(x0)
	fy := py - float64(y0)

	h00 := tile.At(x0, y0)
	h10 := tile.At(x1, y0)
	h01 := tile.At(x0, y1)
	h11 := tile.At(x1, y1)

	top := h00 + (h10-h00)*fx
	bot := h01 + (h11-h01)*fx
	return top + (bot-top)*fy
}

// ReloadGrid recenters the grid on a location and fans out the tile
// fetch+decode work as independent concurrent tasks. A failed fetch or
// decode leaves that slot empty and never aborts the reload. All tasks
// are joined before installing and stitching, so the grid is never
// queried in a half-stitched state.
//
// Returns an error only when the context is canceled.
func ReloadGrid(ctx context.Context, grid *HeightGrid, loc domain.GeoPoint, zoom int, source ports.TileSource) error {
	keys := grid.Recenter(loc, zoom)
	tiles := make([]*HeightTile, len(keys))

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentTileFetches)

	for i, key := range keys {
		i, key := i, key
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := source.FetchTile(ctx, key)
			if err != nil {
				log.Printf("tile fetch skipped: key=%s err=%v", key, err)
				return nil
			}

			tile, err := DecodeTilePNG(data)
			if err != nil {
				log.Printf("tile decode skipped: key=%s err=%v", key, err)
				return nil
			}

			tiles[i] = tile
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for i, tile := range tiles {
		if tile != nil {
			grid.Install(keys[i], tile)
		}
	}
	grid.StitchBoundaries()
	return nil
}
