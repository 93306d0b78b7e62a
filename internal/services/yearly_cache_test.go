package services

import (
	"context"
	"testing"
	"time"

	"topo-sunlight-service/internal/domain"
)

func TestDaysInYear(t *testing.T) {
	if got := DaysInYear(2024); got != 366 {
		t.Fatalf("2024 days = %d, want 366", got)
	}
	if got := DaysInYear(2023); got != 365 {
		t.Fatalf("2023 days = %d, want 365", got)
	}
	if got := DaysInYear(1900); got != 365 {
		t.Fatalf("1900 days = %d, want 365 (century non-leap)", got)
	}
	if got := DaysInYear(2000); got != 366 {
		t.Fatalf("2000 days = %d, want 366", got)
	}
}

func TestYearlyCacheSolvesOncePerKey(t *testing.T) {
	cache := NewYearlyTopoCache()
	loc := domain.GeoPoint{Lat: -25.2744, Lon: 133.7751}

	solves := 0
	solve := func(date time.Time) (domain.TopoDayRecord, error) {
		solves++
		rise := date.Add(-6 * time.Hour)
		set := date.Add(6 * time.Hour)
		return domain.TopoDayRecord{
			AstronomicalSunrise: rise,
			AstronomicalSunset:  set,
			TopoSunrise:         rise,
			TopoSunset:          set,
		}, nil
	}

	first, err := cache.Ensure(context.Background(), loc, 2024, solve, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solves != 366 {
		t.Fatalf("solves after first ensure = %d, want 366", solves)
	}
	if len(first) != 366 {
		t.Fatalf("records = %d, want 366", len(first))
	}
	if first[60].DayOfYear != 60 {
		t.Fatalf("day 60 record carries day %d", first[60].DayOfYear)
	}

	// Same key: no recomputation, same content.
	second, err := cache.Ensure(context.Background(), loc, 2024, solve, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solves != 366 {
		t.Fatalf("solves after cache hit = %d, want 366", solves)
	}
	if second[200] != first[200] {
		t.Fatalf("cache hit returned different record for day 200")
	}

	// Any key change rebuilds the whole year.
	moved := domain.GeoPoint{Lat: loc.Lat + 0.0001, Lon: loc.Lon}
	if _, err := cache.Ensure(context.Background(), moved, 2024, solve, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solves != 732 {
		t.Fatalf("solves after location change = %d, want 732", solves)
	}
}

func TestYearlyCacheYieldsPerDay(t *testing.T) {
	cache := NewYearlyTopoCache()
	loc := domain.GeoPoint{Lat: 47.0, Lon: 11.0}

	yields := 0
	onDay := func(day, total int) {
		yields++
		if total != 365 {
			t.Fatalf("onDay total = %d, want 365", total)
		}
		if day != yields {
			t.Fatalf("onDay day = %d, want %d (in order)", day, yields)
		}
	}

	solve := func(date time.Time) (domain.TopoDayRecord, error) {
		return domain.TopoDayRecord{}, nil
	}

	if _, err := cache.Ensure(context.Background(), loc, 2023, solve, onDay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if yields != 365 {
		t.Fatalf("yields = %d, want 365", yields)
	}
}

func TestYearlyCacheCanceledContext(t *testing.T) {
	cache := NewYearlyTopoCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solve := func(date time.Time) (domain.TopoDayRecord, error) {
		return domain.TopoDayRecord{}, nil
	}

	if _, err := cache.Ensure(ctx, domain.GeoPoint{}, 2024, solve, nil); err == nil {
		t.Fatal("expected context error")
	}

	// A canceled rebuild leaves the cache invalid: the next ensure
	// starts over from day 1.
	solves := 0
	counting := func(date time.Time) (domain.TopoDayRecord, error) {
		solves++
		return domain.TopoDayRecord{}, nil
	}
	if _, err := cache.Ensure(context.Background(), domain.GeoPoint{}, 2024, counting, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solves != 366 {
		t.Fatalf("solves after retry = %d, want 366", solves)
	}
}
