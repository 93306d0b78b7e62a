// Package ephemeris adapts published astronomical algorithms to the
// engine's Ephemeris port.
package ephemeris

import (
	"math"
	"time"

	"topo-sunlight-service/internal/ports"

	"github.com/mooncaker816/learnmeeus/v3/coord"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/sidereal"
	"github.com/mooncaker816/learnmeeus/v3/solar"
	"github.com/nathan-osman/go-sunrise"
	"github.com/soniakeys/unit"
)

// Meeus implements the Ephemeris port with the Meeus solar position
// algorithms for altitude/azimuth and go-sunrise for the daily
// sunrise/sunset pair. Solar noon is the midpoint of rise and set.
type Meeus struct{}

var _ ports.Ephemeris = Meeus{}

// SunPosition returns the sun's apparent altitude and azimuth.
// Meeus measures azimuth westward from south; the port convention is
// clockwise from north, hence the half-turn rebase.
func (Meeus) SunPosition(t time.Time, lat, lon float64) ports.SunPosition {
	jd := julian.TimeToJD(t.UTC())

	ra, dec := solar.ApparentEquatorial(jd)
	st := sidereal.Apparent(jd)

	// Meeus longitudes are positive west.
	az, alt := coord.EqToHz(ra, dec, unit.AngleFromDeg(lat), unit.AngleFromDeg(-lon), st)

	azNorth := math.Mod(az.Rad()+math.Pi, 2*math.Pi)
	if azNorth < 0 {
		azNorth += 2 * math.Pi
	}

	return ports.SunPosition{
		AltitudeRad: alt.Rad(),
		AzimuthRad:  azNorth,
	}
}

// SunTimes returns the astronomical sunrise, sunset and solar noon for
// the UTC calendar day of date. All three are zero during polar day
// or night.
func (Meeus) SunTimes(date time.Time, lat, lon float64) ports.SunTimes {
	d := date.UTC()
	rise, set := sunrise.SunriseSunset(lat, lon, d.Year(), d.Month(), d.Day())
	if rise.IsZero() || set.IsZero() {
		return ports.SunTimes{}
	}

	return ports.SunTimes{
		Sunrise:   rise,
		Sunset:    set,
		SolarNoon: rise.Add(set.Sub(rise) / 2),
	}
}
