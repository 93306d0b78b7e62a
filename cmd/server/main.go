package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"topo-sunlight-service/internal/adapters/cache"
	"topo-sunlight-service/internal/adapters/ephemeris"
	"topo-sunlight-service/internal/adapters/tiles"
	"topo-sunlight-service/internal/api"
	"topo-sunlight-service/internal/config"
	"topo-sunlight-service/internal/platform/db"
	"topo-sunlight-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Terrarium tiles, Redis, Postgres, Meeus
// ephemeris) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	tileBaseURL := config.Get("ELEVATION_TILE_BASE_URL", tiles.DefaultBaseURL)
	redisAddr := config.Get("REDIS_ADDR", "")
	databaseURL := config.Get("DATABASE_URL", "")

	defaultZoom, err := strconv.Atoi(config.Get("DEFAULT_ZOOM", "13"))
	if err != nil || defaultZoom < 12 || defaultZoom > 15 {
		log.Fatal("DEFAULT_ZOOM must be an integer between 12 and 15")
	}

	var tileSource ports.TileSource = tiles.NewTerrariumSource(tileBaseURL)

	// Optional Redis byte cache in front of the tile host.
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		tileSource = cache.NewRedisTileCache(rdb, tileSource, 0)
		log.Printf("tile cache enabled addr=%s", redisAddr)
	}

	// Optional Postgres persistence for computed yearly records.
	var store ports.TopoDayStore
	if databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()

		if err := cache.InitSchema(pg); err != nil {
			log.Fatal(err)
		}
		store = cache.NewSQLTopoDayStore(pg)
		log.Println("topo day store enabled")
	}

	router := api.NewRouter(tileSource, ephemeris.Meeus{}, store, defaultZoom)

	// Timeouts are tuned for cold-cache year computation (a full grid
	// reload plus 730 bisection searches).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
