package ports

import (
	"context"
	"topo-sunlight-service/internal/domain"
)

// Port: persistence for computed per-day topographic sun times.
//
// Stores are keyed by a rounded location key plus year; a partial year
// in the store is treated as a miss by callers.
type TopoDayStore interface {
	// Return all stored day records for one location and year, keyed
	// by day of year. An empty map means nothing is stored.
	GetYear(ctx context.Context, loc domain.GeoPoint, year int) (map[int]domain.TopoDayRecord, error)
	// Store day records for one location and year, replacing any
	// existing rows for the same days.
	PutDays(ctx context.Context, loc domain.GeoPoint, year int, days map[int]domain.TopoDayRecord) error
}
