package domain

import "time"

// Vec3 is a point or direction in the engine's local world frame
// (+Y up, +Z south, +X west; all components in world units).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// OcclusionResult reports whether a point receives direct sunlight at
// some instant, and if not, the first terrain point blocking the ray.
type OcclusionResult struct {
	Lit bool
	// BlockingPoint is nil when Lit is true or when the sun is below
	// the horizon (no meaningful ray was marched).
	BlockingPoint *Vec3
}

// TopoDayRecord holds the astronomical and terrain-corrected sun times
// for one calendar day at one location. Immutable once stored.
type TopoDayRecord struct {
	DayOfYear           int
	AstronomicalSunrise time.Time
	AstronomicalSunset  time.Time
	TopoSunrise         time.Time
	TopoSunset          time.Time
}

// SunriseDelay is how much later direct sunlight first reaches the
// ground compared to the astronomical sunrise.
func (r TopoDayRecord) SunriseDelay() time.Duration {
	return r.TopoSunrise.Sub(r.AstronomicalSunrise)
}

// SunsetAdvance is how much earlier direct sunlight is lost compared to
// the astronomical sunset.
func (r TopoDayRecord) SunsetAdvance() time.Duration {
	return r.AstronomicalSunset.Sub(r.TopoSunset)
}
