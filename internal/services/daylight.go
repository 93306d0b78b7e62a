package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/platform/obs"
	"topo-sunlight-service/internal/ports"
)

// DaylightRequest identifies one location/zoom to analyze.
type DaylightRequest struct {
	Location domain.GeoPoint
	Zoom     int
}

// observerPosition places the observer at the grid origin on top of
// the terrain. Falls back to ground level while terrain is missing.
func observerPosition(grid *HeightGrid) domain.Vec3 {
	y := 0.0
	if grid != nil && grid.HasData() {
		if h := grid.HeightAt(0, 0); !math.IsInf(h, -1) {
			y = h
		}
	}
	return domain.Vec3{X: 0, Y: y, Z: 0}
}

// SolveDay computes the topographic sunrise/sunset for one calendar
// day against an already loaded and stitched grid.
//
// Two bisections per day: a rising-edge search over
// [astronomical sunrise, solar noon] and a falling-edge search over
// [solar noon, astronomical sunset]. On polar day/night dates the
// ephemeris reports zero times and they pass through unmodified.
func SolveDay(tester *OcclusionTester, date time.Time) domain.TopoDayRecord {
	times := tester.Ephemeris.SunTimes(date, tester.Location.Lat, tester.Location.Lon)

	rec := domain.TopoDayRecord{
		DayOfYear:           date.YearDay(),
		AstronomicalSunrise: times.Sunrise,
		AstronomicalSunset:  times.Sunset,
	}
	if times.Sunrise.IsZero() || times.Sunset.IsZero() {
		return rec
	}

	observer := observerPosition(tester.Grid)
	isLit := func(t time.Time) bool {
		return tester.IsLit(t, observer).Lit
	}

	rec.TopoSunrise = FindTransition(times.Sunrise, times.SolarNoon, true, isLit)
	rec.TopoSunset = FindTransition(times.SolarNoon, times.Sunset, false, isLit)
	return rec
}

// ComputeTopoDay loads the terrain window for a location and solves a
// single day. Tile failures degrade to flat or absent terrain; only a
// canceled context is an error.
func ComputeTopoDay(
	ctx context.Context,
	req DaylightRequest,
	date time.Time,
	tiles ports.TileSource,
	eph ports.Ephemeris,
) (_ domain.TopoDayRecord, err error) {
	defer obs.Time(ctx, "daylight.ComputeTopoDay")(&err)

	grid := NewHeightGrid()
	if err := ReloadGrid(ctx, grid, req.Location, req.Zoom, tiles); err != nil {
		return domain.TopoDayRecord{}, fmt.Errorf("compute topo day: reload grid: %w", err)
	}

	tester := NewOcclusionTester(grid, eph, req.Location)
	return SolveDay(tester, date), nil
}

// ComputeTopoYear loads the terrain window once and drives the yearly
// cache across every day of the year. onDay may be nil.
func ComputeTopoYear(
	ctx context.Context,
	req DaylightRequest,
	year int,
	tiles ports.TileSource,
	eph ports.Ephemeris,
	cache *YearlyTopoCache,
	onDay func(day, total int),
) (_ map[int]domain.TopoDayRecord, err error) {
	defer obs.Time(ctx, "daylight.ComputeTopoYear")(&err)

	grid := NewHeightGrid()
	if err := ReloadGrid(ctx, grid, req.Location, req.Zoom, tiles); err != nil {
		return nil, fmt.Errorf("compute topo year: reload grid: %w", err)
	}

	tester := NewOcclusionTester(grid, eph, req.Location)
	solve := func(date time.Time) (domain.TopoDayRecord, error) {
		return SolveDay(tester, date), nil
	}

	days, err := cache.Ensure(ctx, req.Location, year, solve, onDay)
	if err != nil {
		return nil, fmt.Errorf("compute topo year: %w", err)
	}
	return days, nil
}
