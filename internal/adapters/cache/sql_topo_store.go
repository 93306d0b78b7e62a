package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"topo-sunlight-service/internal/domain"
	"topo-sunlight-service/internal/platform/obs"
)

// SQLTopoDayStore persists computed per-day topographic sun times.
//
// Rows are keyed by a rounded location key, year and day of year. The
// key is an exact-match string so two nearby locations never share
// records; any location change means a fresh year of rows.
type SQLTopoDayStore struct {
	DB *sql.DB
}

func NewSQLTopoDayStore(db *sql.DB) *SQLTopoDayStore {
	return &SQLTopoDayStore{DB: db}
}

// locKey renders the exact-match location key for cache rows.
func locKey(loc domain.GeoPoint) string {
	return fmt.Sprintf("%.4f_%.4f", loc.Lat, loc.Lon)
}

// InitSchema creates the topo day table when missing.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTopoDaysQuery := `
	CREATE TABLE IF NOT EXISTS topo_days (
		loc_key TEXT NOT NULL,
		year INTEGER NOT NULL,
		day_of_year INTEGER NOT NULL,
		astro_sunrise TIMESTAMPTZ,
		astro_sunset TIMESTAMPTZ,
		topo_sunrise TIMESTAMPTZ,
		topo_sunset TIMESTAMPTZ,
		PRIMARY KEY (loc_key, year, day_of_year)
	);
	`

	if _, err := tx.Exec(createTopoDaysQuery); err != nil {
		return fmt.Errorf("init schema: create topo_days: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit: %w", err)
	}

	return nil
}

// GetYear fetches every stored day record for one location and year.
func (s *SQLTopoDayStore) GetYear(
	ctx context.Context,
	loc domain.GeoPoint,
	year int,
) (_ map[int]domain.TopoDayRecord, err error) {
	defer obs.Time(ctx, "topo.store.GetYear")(&err)

	if s.DB == nil {
		return nil, errors.New("topo day store: db is nil")
	}

	q := `
	SELECT day_of_year, astro_sunrise, astro_sunset, topo_sunrise, topo_sunset
	FROM topo_days
	WHERE loc_key = $1 AND year = $2;
	`

	rows, err := s.DB.QueryContext(ctx, q, locKey(loc), year)
	if err != nil {
		return nil, fmt.Errorf("get topo days: query topo_days table: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.TopoDayRecord)
	for rows.Next() {
		var day int
		var astroRise, astroSet, topoRise, topoSet sql.NullTime
		if err := rows.Scan(&day, &astroRise, &astroSet, &topoRise, &topoSet); err != nil {
			return nil, fmt.Errorf("get topo days: scan rows: %w", err)
		}

		out[day] = domain.TopoDayRecord{
			DayOfYear:           day,
			AstronomicalSunrise: nullableTime(astroRise),
			AstronomicalSunset:  nullableTime(astroSet),
			TopoSunrise:         nullableTime(topoRise),
			TopoSunset:          nullableTime(topoSet),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get topo days: row iteration: %w", err)
	}

	return out, nil
}

// PutDays stores day records for one location and year, replacing any
// existing rows for the same days.
func (s *SQLTopoDayStore) PutDays(
	ctx context.Context,
	loc domain.GeoPoint,
	year int,
	days map[int]domain.TopoDayRecord,
) (err error) {
	defer obs.Time(ctx, "topo.store.PutDays")(&err)

	if s.DB == nil {
		return errors.New("topo day store: db is nil")
	}

	if len(days) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert topo days: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO topo_days (loc_key, year, day_of_year, astro_sunrise, astro_sunset, topo_sunrise, topo_sunset)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (loc_key, year, day_of_year) DO UPDATE
	SET astro_sunrise = EXCLUDED.astro_sunrise,
		astro_sunset = EXCLUDED.astro_sunset,
		topo_sunrise = EXCLUDED.topo_sunrise,
		topo_sunset = EXCLUDED.topo_sunset;
	`)
	if err != nil {
		return fmt.Errorf("insert topo days: db prepare: %w", err)
	}
	defer stmt.Close()

	key := locKey(loc)
	for day, rec := range days {
		if day < 1 || day > 366 {
			return fmt.Errorf("insert topo days: day %d out of range", day)
		}

		if _, err := stmt.ExecContext(ctx, key, year, day,
			timeOrNull(rec.AstronomicalSunrise),
			timeOrNull(rec.AstronomicalSunset),
			timeOrNull(rec.TopoSunrise),
			timeOrNull(rec.TopoSunset),
		); err != nil {
			return fmt.Errorf("insert topo days day=%d: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert topo days commit: %w", err)
	}

	return nil
}

func nullableTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// Polar day/night records carry zero times; store them as NULL.
func timeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
