package services

import (
	"math"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/ports"
)

const (
	// SunRayRadius is the distance from the observer at which the sun
	// ray origin is placed.
	SunRayRadius = 10.0

	// CoarseStep is the ray-march step size in world units. Empirical;
	// smaller values trade speed for precision.
	CoarseStep = 2.0

	// RefineProbes is the number of linear probes used to narrow a
	// coarse hit, spaced at 10% of the coarse step. Empirical.
	RefineProbes = 5
)

// OcclusionTester answers "does direct sunlight reach this point at
// this instant" by marching a ray from the sun toward the observer
// through the height grid. Results depend only on the instant, the
// tracked location and the loaded grid generation; there is no hidden
// state across calls.
type OcclusionTester struct {
	Grid      *HeightGrid
	Ephemeris ports.Ephemeris
	Location  domain.GeoPoint

	// Zero values fall back to the package defaults.
	RayRadius  float64
	Step       float64
	ProbeCount int
}

func NewOcclusionTester(grid *HeightGrid, eph ports.Ephemeris, loc domain.GeoPoint) *OcclusionTester {
	return &OcclusionTester{Grid: grid, Ephemeris: eph, Location: loc}
}

func (o *OcclusionTester) rayRadius() float64 {
	if o.RayRadius > 0 {
		return o.RayRadius
	}
	return SunRayRadius
}

func (o *OcclusionTester) step() float64 {
	if o.Step > 0 {
		return o.Step
	}
	return CoarseStep
}

func (o *OcclusionTester) probes() int {
	if o.ProbeCount > 0 {
		return o.ProbeCount
	}
	return RefineProbes
}

// IsLit reports whether the observer position receives direct sunlight
// at instant t, and the first terrain point blocking the ray when not.
func (o *OcclusionTester) IsLit(t time.Time, observer domain.Vec3) domain.OcclusionResult {
	// Without terrain there is nothing to occlude against.
	if o.Grid == nil || !o.Grid.HasData() {
		return domain.OcclusionResult{Lit: true}
	}

	sp := o.Ephemeris.SunPosition(t, o.Location.Lat, o.Location.Lon)
	sun := SunDirection(sp.AltitudeRad, sp.AzimuthRad, o.rayRadius())

	// Sun below the horizon and below the observer: no meaningful ray.
	if sp.AltitudeRad < 0 && sun.Y < observer.Y {
		return domain.OcclusionResult{Lit: false}
	}

	delta := domain.Vec3{X: observer.X - sun.X, Y: observer.Y - sun.Y, Z: observer.Z - sun.Z}
	dist := math.Sqrt(delta.X*delta.X + delta.Y*delta.Y + delta.Z*delta.Z)
	if dist == 0 {
		return domain.OcclusionResult{Lit: true}
	}
	dir := domain.Vec3{X: delta.X / dist, Y: delta.Y / dist, Z: delta.Z / dist}

	step := o.step()
	prev := sun
	for d := step; d < dist; d += step {
		p := domain.Vec3{X: sun.X + dir.X*d, Y: sun.Y + dir.Y*d, Z: sun.Z + dir.Z*d}
		terrain := o.Grid.HeightAt(p.X, p.Z)
		if p.Y < terrain {
			block := o.refine(prev, dir, p, terrain)
			return domain.OcclusionResult{Lit: false, BlockingPoint: &block}
		}
		prev = p
	}

	return domain.OcclusionResult{Lit: true}
}

// refine narrows the blocked interval between the last clear sample
// and the first blocked one with a few fixed linear probes, returning
// the approximate first blocking point snapped to the terrain surface.
func (o *OcclusionTester) refine(lastClear, dir, firstBlocked domain.Vec3, blockedTerrain float64) domain.Vec3 {
	step := o.step()
	for i := 1; i <= o.probes(); i++ {
		f := float64(i) * 0.1 * step
		q := domain.Vec3{X: lastClear.X + dir.X*f, Y: lastClear.Y + dir.Y*f, Z: lastClear.Z + dir.Z*f}
		terrain := o.Grid.HeightAt(q.X, q.Z)
		if q.Y < terrain {
			q.Y = terrain
			return q
		}
	}
	firstBlocked.Y = blockedTerrain
	return firstBlocked
}
