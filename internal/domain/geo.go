package domain

import "fmt"

// Immutable geographic point in degrees.
// Latitude is in [-90, 90], longitude in [-180, 180].
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies inside the WGS84 degree ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// TileKey identifies one raster elevation tile in the slippy-map scheme.
// Derived on demand from a GeoPoint and zoom, never stored independently.
type TileKey struct {
	Zoom int
	X    int
	Y    int
}

func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Zoom, k.X, k.Y)
}
