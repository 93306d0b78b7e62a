package main

import (
	"context"
	"flag"
	"log"
	"time"

	"topo-sunlight-service/internal/adapters/cache"
	"topo-sunlight-service/internal/adapters/ephemeris"
	"topo-sunlight-service/internal/adapters/tiles"
	"topo-sunlight-service/internal/config"
	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/platform/db"
	"topo-sunlight-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// yeartool computes a full year of topographic sun times for one
// location and prints a daylight-loss summary. With DATABASE_URL set
// the records are also persisted for the server to reuse.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	lat := flag.Float64("lat", 0, "latitude in degrees")
	lon := flag.Float64("lon", 0, "longitude in degrees")
	year := flag.Int("year", time.Now().UTC().Year(), "calendar year")
	zoom := flag.Int("zoom", 13, "tile zoom level (12-15)")
	flag.Parse()

	loc := domain.GeoPoint{Lat: *lat, Lon: *lon}
	if !loc.Valid() {
		log.Fatal("lat must be in [-90,90] and lon in [-180,180]")
	}
	if *zoom < 12 || *zoom > 15 {
		log.Fatal("zoom must be between 12 and 15")
	}

	ctx := context.Background()
	source := tiles.NewTerrariumSource(config.Get("ELEVATION_TILE_BASE_URL", tiles.DefaultBaseURL))

	req := services.DaylightRequest{Location: loc, Zoom: *zoom}
	yearCache := services.NewYearlyTopoCache()

	onDay := func(day, total int) {
		if day%30 == 0 || day == total {
			log.Printf("solved day=%d/%d", day, total)
		}
	}

	days, err := services.ComputeTopoYear(ctx, req, *year, source, ephemeris.Meeus{}, yearCache, onDay)
	if err != nil {
		log.Fatal(err)
	}

	var totalDelay, totalAdvance time.Duration
	for day := 1; day <= services.DaysInYear(*year); day++ {
		rec := days[day]
		if rec.TopoSunrise.IsZero() {
			continue
		}
		totalDelay += rec.SunriseDelay()
		totalAdvance += rec.SunsetAdvance()
	}
	log.Printf("year=%d lat=%.4f lon=%.4f sunrise_delay_total=%s sunset_advance_total=%s",
		*year, loc.Lat, loc.Lon, totalDelay, totalAdvance)

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		return
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	if err := cache.InitSchema(pg); err != nil {
		log.Fatal(err)
	}

	store := cache.NewSQLTopoDayStore(pg)
	if err := store.PutDays(ctx, loc, *year, days); err != nil {
		log.Fatal(err)
	}
	log.Printf("persisted days=%d", len(days))
}
