package dto

import "time"

// Times are UTC instants. Nil times mark polar day/night dates where
// the ephemeris reports no sunrise/sunset.
type DayResponse struct {
	DayOfYear            int        `json:"day_of_year"`
	AstronomicalSunrise  *time.Time `json:"astronomical_sunrise"`
	AstronomicalSunset   *time.Time `json:"astronomical_sunset"`
	TopoSunrise          *time.Time `json:"topo_sunrise"`
	TopoSunset           *time.Time `json:"topo_sunset"`
	SunriseDelaySeconds  int64      `json:"sunrise_delay_seconds"`
	SunsetAdvanceSeconds int64      `json:"sunset_advance_seconds"`
}

type DaylightResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Zoom      int         `json:"zoom"`
	Date      string      `json:"date"`
	Day       DayResponse `json:"day"`
}

type YearResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Zoom      int           `json:"zoom"`
	Year      int           `json:"year"`
	Days      []DayResponse `json:"days"`
}
