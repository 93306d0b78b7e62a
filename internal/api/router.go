package api

import (
	"net/http"

	"topo-sunlight-service/internal/api/handlers"
	"topo-sunlight-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay
// unaware of concrete adapters).
func NewRouter(tiles ports.TileSource, eph ports.Ephemeris, store ports.TopoDayStore, defaultZoom int) http.Handler {
	mux := http.NewServeMux()

	daylight := handlers.NewDaylightHandler(tiles, eph, store, defaultZoom)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/daylight", daylight.Day)
	mux.HandleFunc("/daylight/year", daylight.Year)

	return loggingMiddleware(mux)
}
