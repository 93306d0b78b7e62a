package ephemeris

import (
	"math"
	"testing"
	"time"
)

func TestSunTimesOrdering(t *testing.T) {
	eph := Meeus{}
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Cupertino, matching published sunrise tables to the minute.
	times := eph.SunTimes(date, 37.3229978, -122.0321823)
	if times.Sunrise.IsZero() || times.Sunset.IsZero() {
		t.Fatal("expected sun times for a mid-latitude winter day")
	}
	if !times.Sunrise.Before(times.SolarNoon) || !times.SolarNoon.Before(times.Sunset) {
		t.Fatalf("ordering broken: %+v", times)
	}
	if d := times.Sunset.Sub(times.Sunrise); d < 8*time.Hour || d > 11*time.Hour {
		t.Fatalf("winter day length = %v, want 8h-11h", d)
	}
}

func TestSunPositionSummerNoon(t *testing.T) {
	eph := Meeus{}

	// Around local solar noon on the June solstice at 40N, 0E the sun
	// stands roughly 73 degrees high, close to due south.
	at := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	pos := eph.SunPosition(at, 40, 0)

	if pos.AltitudeRad < 1.15 || pos.AltitudeRad > 1.35 {
		t.Fatalf("solstice noon altitude = %v rad, want ~1.28", pos.AltitudeRad)
	}
	if math.Abs(pos.AzimuthRad-math.Pi) > 0.5 {
		t.Fatalf("solstice noon azimuth = %v rad, want near pi (south)", pos.AzimuthRad)
	}
}

func TestSunPositionMidnight(t *testing.T) {
	eph := Meeus{}

	at := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	pos := eph.SunPosition(at, 40, 0)
	if pos.AltitudeRad >= 0 {
		t.Fatalf("midnight altitude = %v rad, want negative", pos.AltitudeRad)
	}

	if pos.AzimuthRad < 0 || pos.AzimuthRad >= 2*math.Pi {
		t.Fatalf("azimuth = %v, want within [0, 2pi)", pos.AzimuthRad)
	}
}
