package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatusRecord is the persisted health of one endpoint.
type StatusRecord struct {
	StationName string
	StationURL  string
	Status      string
	Latency     time.Duration
	Country     string
	City        string
	CheckedAt   time.Time
}

// UpsertConnectionStatus overwrites the cached health entry for a station.
// There is exactly one row per station name.
func (s *Store) UpsertConnectionStatus(ctx context.Context, rec StatusRecord) error {
	checkedAt := rec.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO connection_status (
            station_name, station_url, status, latency_ms, country, city, checked_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.StationName,
		rec.StationURL,
		rec.Status,
		rec.Latency.Milliseconds(),
		nullableString(rec.Country),
		nullableString(rec.City),
		checkedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert connection status: %w", err)
	}
	return nil
}

// ConnectionStatuses returns all persisted health entries.
func (s *Store) ConnectionStatuses(ctx context.Context) ([]StatusRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT station_name, station_url, status, latency_ms, country, city, checked_at
        FROM connection_status
        ORDER BY station_name`)
	if err != nil {
		return nil, fmt.Errorf("query connection statuses: %w", err)
	}
	defer rows.Close()

	var records []StatusRecord
	for rows.Next() {
		var rec StatusRecord
		var latencyMS int64
		var country, city sql.NullString
		var checkedAt string
		if err := rows.Scan(&rec.StationName, &rec.StationURL, &rec.Status, &latencyMS, &country, &city, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan connection status: %w", err)
		}
		rec.Latency = time.Duration(latencyMS) * time.Millisecond
		rec.Country = country.String
		rec.City = city.String
		if ts, parseErr := time.Parse(time.RFC3339Nano, checkedAt); parseErr == nil {
			rec.CheckedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
