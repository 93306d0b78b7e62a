package services

import (
	"math"
	"testing"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/ports"
)

type stubEphemeris struct {
	position func(t time.Time) ports.SunPosition
	times    ports.SunTimes
}

func (s stubEphemeris) SunPosition(t time.Time, lat, lon float64) ports.SunPosition {
	return s.position(t)
}

func (s stubEphemeris) SunTimes(date time.Time, lat, lon float64) ports.SunTimes {
	return s.times
}

var _ ports.Ephemeris = stubEphemeris{}

func fixedSun(alt, az float64) stubEphemeris {
	return stubEphemeris{position: func(time.Time) ports.SunPosition {
		return ports.SunPosition{AltitudeRad: alt, AzimuthRad: az}
	}}
}

func flatGrid(h float64) *HeightGrid {
	return buildGrid(midTileLocation(), 12, func(domain.TileKey) *HeightTile {
		return constantTile(h)
	})
}

// eastPlateauGrid builds terrain that is flat at zero except for a
// plateau of the given height covering everything more than two world
// units east of the observer.
func eastPlateauGrid(height float64) *HeightGrid {
	loc := midTileLocation()
	centerXf, _ := LonLatToTile(loc.Lon, loc.Lat, 12)

	return buildGrid(loc, 12, func(key domain.TileKey) *HeightTile {
		tile := constantTile(0)
		for y := 0; y < TileSize; y++ {
			for x := 0; x < TileSize; x++ {
				tileXf := float64(key.X) + float64(x)/TileSize
				if tileXf >= centerXf+0.1 {
					tile.Heights[y*TileSize+x] = height
				}
			}
		}
		return tile
	})
}

func TestIsLitNoTerrainData(t *testing.T) {
	tester := NewOcclusionTester(NewHeightGrid(), fixedSun(-0.5, math.Pi), midTileLocation())

	res := tester.IsLit(time.Now(), domain.Vec3{})
	if !res.Lit {
		t.Fatal("with no terrain data the tester must default to lit")
	}
}

func TestIsLitFlatTerrain(t *testing.T) {
	grid := flatGrid(0)
	observer := domain.Vec3{X: 0, Y: 0, Z: 0}

	// Flat terrain never blocks a sun above the horizon.
	for _, alt := range []float64{0.05, 0.3, 1.0, math.Pi / 2} {
		for _, az := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
			tester := NewOcclusionTester(grid, fixedSun(alt, az), midTileLocation())
			if res := tester.IsLit(time.Now(), observer); !res.Lit {
				t.Fatalf("alt=%v az=%v: flat terrain reported occluded", alt, az)
			}
		}
	}

	// Below the horizon is always occluded, with no blocking point.
	tester := NewOcclusionTester(grid, fixedSun(-0.1, math.Pi), midTileLocation())
	res := tester.IsLit(time.Now(), observer)
	if res.Lit {
		t.Fatal("sun below horizon reported lit")
	}
	if res.BlockingPoint != nil {
		t.Fatalf("below-horizon result carries blocking point %+v", res.BlockingPoint)
	}
}

func TestIsLitEastPlateau(t *testing.T) {
	grid := eastPlateauGrid(1.0)
	observer := domain.Vec3{X: 0, Y: 0, Z: 0}

	// Low eastern sun: the ray dips below the plateau top.
	tester := NewOcclusionTester(grid, fixedSun(0.2, math.Pi/2), midTileLocation())
	res := tester.IsLit(time.Now(), observer)
	if res.Lit {
		t.Fatal("low eastern sun should be blocked by the plateau")
	}
	if res.BlockingPoint == nil {
		t.Fatal("blocked result missing blocking point")
	}
	if res.BlockingPoint.X >= 0 {
		t.Fatalf("blocking point x = %v, want east of observer (negative)", res.BlockingPoint.X)
	}

	// High eastern sun clears the plateau.
	tester = NewOcclusionTester(grid, fixedSun(1.0, math.Pi/2), midTileLocation())
	if res := tester.IsLit(time.Now(), observer); !res.Lit {
		t.Fatal("high eastern sun should clear the plateau")
	}

	// Western sun never crosses the eastern plateau at all.
	tester = NewOcclusionTester(grid, fixedSun(0.2, 3*math.Pi/2), midTileLocation())
	if res := tester.IsLit(time.Now(), observer); !res.Lit {
		t.Fatal("western sun should not be blocked by an eastern plateau")
	}
}
