package handlers

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"topo-sunlight-service/internal/api/dto"
	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/ports"
	"topo-sunlight-service/internal/services"
)

type DaylightHandler struct {
	Tiles       ports.TileSource
	Ephemeris   ports.Ephemeris
	Store       ports.TopoDayStore // optional; nil disables persistence
	DefaultZoom int

	// One in-memory year cache per process. The engine cache is
	// single-owner, so concurrent year requests are serialized here.
	mu        sync.Mutex
	yearCache *services.YearlyTopoCache
}

func NewDaylightHandler(tiles ports.TileSource, eph ports.Ephemeris, store ports.TopoDayStore, defaultZoom int) *DaylightHandler {
	return &DaylightHandler{
		Tiles:       tiles,
		Ephemeris:   eph,
		Store:       store,
		DefaultZoom: defaultZoom,
		yearCache:   services.NewYearlyTopoCache(),
	}
}

// Day handles GET /daylight: astronomical and topographic sun times
// for one location and calendar day.
func (h *DaylightHandler) Day(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	loc, zoom, ok := h.parseLocation(w, r)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	date := time.Now().UTC()
	if dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	req := services.DaylightRequest{Location: loc, Zoom: zoom}
	rec, err := services.ComputeTopoDay(r.Context(), req, date, h.Tiles, h.Ephemeris)
	if err != nil {
		log.Printf("compute topo day failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.DaylightResponse{
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Zoom:      zoom,
		Date:      date.Format("2006-01-02"),
		Day:       dayResponse(rec),
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Year handles GET /daylight/year: per-day records for a whole year.
// The persistent store is consulted first; a computed year is written
// back best-effort.
func (h *DaylightHandler) Year(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	loc, zoom, ok := h.parseLocation(w, r)
	if !ok {
		return
	}

	year := time.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1900 || parsed > 2200 {
			writeError(w, r, http.StatusBadRequest, "year must be between 1900 and 2200")
			return
		}
		year = parsed
	}

	total := services.DaysInYear(year)

	if h.Store != nil {
		stored, err := h.Store.GetYear(r.Context(), loc, year)
		if err != nil {
			log.Printf("topo day store read failed: %v", err)
		} else if len(stored) == total {
			writeJSON(w, r, http.StatusOK, yearResponse(loc, zoom, year, stored))
			return
		}
	}

	req := services.DaylightRequest{Location: loc, Zoom: zoom}

	h.mu.Lock()
	days, err := services.ComputeTopoYear(r.Context(), req, year, h.Tiles, h.Ephemeris, h.yearCache, nil)
	h.mu.Unlock()
	if err != nil {
		log.Printf("compute topo year failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.Store != nil {
		if err := h.Store.PutDays(r.Context(), loc, year, days); err != nil {
			log.Printf("topo day store write failed: %v", err)
		}
	}

	writeJSON(w, r, http.StatusOK, yearResponse(loc, zoom, year, days))
}

func (h *DaylightHandler) parseLocation(w http.ResponseWriter, r *http.Request) (domain.GeoPoint, int, bool) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required numbers")
		return domain.GeoPoint{}, 0, false
	}

	loc := domain.GeoPoint{Lat: lat, Lon: lon}
	if !loc.Valid() {
		writeError(w, r, http.StatusBadRequest, "lat must be in [-90,90] and lon in [-180,180]")
		return domain.GeoPoint{}, 0, false
	}

	zoom := h.DefaultZoom
	if z := q.Get("zoom"); z != "" {
		parsed, err := strconv.Atoi(z)
		if err != nil || parsed < services.BaseZoom || parsed > 15 {
			writeError(w, r, http.StatusBadRequest, "zoom must be between 12 and 15")
			return domain.GeoPoint{}, 0, false
		}
		zoom = parsed
	}

	return loc, zoom, true
}

func dayResponse(rec domain.TopoDayRecord) dto.DayResponse {
	res := dto.DayResponse{
		DayOfYear:           rec.DayOfYear,
		AstronomicalSunrise: timePtr(rec.AstronomicalSunrise),
		AstronomicalSunset:  timePtr(rec.AstronomicalSunset),
		TopoSunrise:         timePtr(rec.TopoSunrise),
		TopoSunset:          timePtr(rec.TopoSunset),
	}
	if !rec.AstronomicalSunrise.IsZero() && !rec.TopoSunrise.IsZero() {
		res.SunriseDelaySeconds = int64(rec.SunriseDelay() / time.Second)
		res.SunsetAdvanceSeconds = int64(rec.SunsetAdvance() / time.Second)
	}
	return res
}

func yearResponse(loc domain.GeoPoint, zoom, year int, days map[int]domain.TopoDayRecord) dto.YearResponse {
	res := dto.YearResponse{
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Zoom:      zoom,
		Year:      year,
		Days:      make([]dto.DayResponse, 0, len(days)),
	}
	for _, rec := range days {
		res.Days = append(res.Days, dayResponse(rec))
	}
	sort.Slice(res.Days, func(i, j int) bool { return res.Days[i].DayOfYear < res.Days[j].DayOfYear })
	return res
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
