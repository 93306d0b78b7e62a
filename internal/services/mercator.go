package services

import (
	"math"

	"topo-sunlight-service/internal/domain"
)

// Web Mercator slippy-map tile math.
//
// Latitudes must lie strictly within (-85.05, 85.05) for finite output;
// beyond that the projection diverges and no clamping is applied.

// LonLatToTile converts a longitude/latitude pair to fractional tile
// coordinates at the given zoom level.
func LonLatToTile(lon, lat float64, zoom int) (x, y float64) {
	n := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180
	x = n * (lon + 180) / 360
	y = n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// TileToLonLat is the exact inverse of LonLatToTile.
func TileToLonLat(x, y float64, zoom int) (lon, lat float64) {
	n := math.Exp2(float64(zoom))
	lon = x/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	return lon, lat
}

// TileKeyFor returns the integer tile containing a point at a zoom.
func TileKeyFor(loc domain.GeoPoint, zoom int) domain.TileKey {
	x, y := LonLatToTile(loc.Lon, loc.Lat, zoom)
	return domain.TileKey{Zoom: zoom, X: int(math.Floor(x)), Y: int(math.Floor(y))}
}
