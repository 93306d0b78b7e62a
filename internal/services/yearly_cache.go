package services

import (
	"context"
	"fmt"
	"time"

	"topo-sunlight-service/internal/domain"
)

// yearKey identifies one cached year of per-day records. Compared by
// exact equality: any difference, however small, discards the cache.
type yearKey struct {
	Lat  float64
	Lon  float64
	Year int
}

// YearlyTopoCache amortizes the per-day topographic solve across all
// days of a year for a fixed (lat, lon, year). The cache is rebuilt
// wholesale on any key change and never patched incrementally.
//
// Single-owner: callers sharing one cache across goroutines must
// serialize access themselves.
type YearlyTopoCache struct {
	key   yearKey
	days  map[int]domain.TopoDayRecord
	valid bool
}

func NewYearlyTopoCache() *YearlyTopoCache {
	return &YearlyTopoCache{}
}

// DaysInYear returns 365 or 366 under the Gregorian leap rule.
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// Ensure returns the per-day records for (loc, year), solving each day
// at most once per key. A repeated call with an unchanged key returns
// the same map without recomputation.
//
// solve is invoked with a UTC noon instant of each day in order; onDay
// (optional) is called after every solved day and doubles as the
// cooperative yield point so a host can interleave other work. The
// context is checked between days; cancellation leaves the cache
// invalid so the next call rebuilds from day 1.
func (c *YearlyTopoCache) Ensure(
	ctx context.Context,
	loc domain.GeoPoint,
	year int,
	solve func(date time.Time) (domain.TopoDayRecord, error),
	onDay func(day, total int),
) (map[int]domain.TopoDayRecord, error) {
	key := yearKey{Lat: loc.Lat, Lon: loc.Lon, Year: year}
	if c.valid && c.key == key {
		return c.days, nil
	}

	c.valid = false
	c.key = key

	total := DaysInYear(year)
	days := make(map[int]domain.TopoDayRecord, total)

	for day := 1; day <= total; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// time.Date normalizes the day-of-year offset to a calendar date.
		date := time.Date(year, time.January, day, 12, 0, 0, 0, time.UTC)

		rec, err := solve(date)
		if err != nil {
			return nil, fmt.Errorf("yearly topo cache: solve day %d of %d: %w", day, year, err)
		}
		rec.DayOfYear = day
		days[day] = rec

		if onDay != nil {
			onDay(day, total)
		}
	}

	c.days = days
	c.valid = true
	return c.days, nil
}

// Invalidate discards the cached year unconditionally.
func (c *YearlyTopoCache) Invalidate() {
	c.valid = false
	c.days = nil
}
