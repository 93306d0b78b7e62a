package services

import (
	"math"

	"topo-sunlight-service/internal/domain"
)

// SunDirection places the sun at a fixed radius in the engine's local
// frame from an altitude/azimuth pair. Azimuth is measured clockwise
// from north; the half-turn rotation maps that convention onto the
// grid frame (+Z south, +X west), so an eastern sun sits at negative X.
func SunDirection(altitudeRad, azimuthRad, radius float64) domain.Vec3 {
	y := radius * math.Sin(altitudeRad)
	horiz := radius * math.Cos(altitudeRad)
	return domain.Vec3{
		X: horiz * math.Sin(azimuthRad+math.Pi),
		Y: y,
		Z: horiz * math.Cos(azimuthRad+math.Pi),
	}
}
