package ports

import "time"

// SunPosition is the sun's apparent position for an observer.
// Altitude is radians above the horizon; azimuth is radians clockwise
// from true north.
type SunPosition struct {
	AltitudeRad float64
	AzimuthRad  float64
}

// SunTimes are the terrain-free sun events of one calendar day, as UTC
// instants. All three are zero for polar day/night dates.
type SunTimes struct {
	Sunrise   time.Time
	Sunset    time.Time
	SolarNoon time.Time
}

// Port: the astronomical oracle. Assumed correct and monotonic with
// physical sun motion; the engine never second-guesses it.
type Ephemeris interface {
	// Return the sun's altitude/azimuth at an instant for a location.
	SunPosition(t time.Time, lat, lon float64) SunPosition
	// Return astronomical sunrise, sunset and solar noon for the
	// calendar day containing date (interpreted in UTC).
	SunTimes(date time.Time, lat, lon float64) SunTimes
}
