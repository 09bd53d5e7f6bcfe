package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// JobRecord is a scheduled job persisted for restart visibility. The
// scheduler's in-memory registry is authoritative while the process runs.
type JobRecord struct {
	ID              string
	Kind            string
	StationName     string
	StationURL      string
	CountryFilter   string
	MaxStations     int
	MaxConcurrent   int
	StaggerSeconds  int
	DurationSeconds int
	IntervalMinutes int
	Active          bool
	CreatedAt       time.Time
}

// SaveJob inserts or replaces a scheduled job record.
func (s *Store) SaveJob(ctx context.Context, job JobRecord) error {
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO scheduled_jobs (
            id, kind, station_name, station_url, country_filter, max_stations,
            max_concurrent, stagger_seconds, duration_seconds, interval_minutes,
            is_active, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Kind,
		nullableString(job.StationName),
		nullableString(job.StationURL),
		nullableString(job.CountryFilter),
		job.MaxStations,
		job.MaxConcurrent,
		job.StaggerSeconds,
		job.DurationSeconds,
		job.IntervalMinutes,
		boolToInt(job.Active),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// DeactivateJob clears a job's active flag. It reports whether a row changed.
func (s *Store) DeactivateJob(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE scheduled_jobs SET is_active = 0 WHERE id = ? AND is_active = 1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate job rows: %w", err)
	}
	return affected > 0, nil
}

// ListJobs returns persisted job records, active first, newest first within
// each group.
func (s *Store) ListJobs(ctx context.Context) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, kind, station_name, station_url, country_filter, max_stations,
               max_concurrent, stagger_seconds, duration_seconds, interval_minutes,
               is_active, created_at
        FROM scheduled_jobs
        ORDER BY is_active DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRecord
	for rows.Next() {
		var job JobRecord
		var stationName, stationURL, countryFilter sql.NullString
		var active int
		var createdAt string
		err := rows.Scan(
			&job.ID,
			&job.Kind,
			&stationName,
			&stationURL,
			&countryFilter,
			&job.MaxStations,
			&job.MaxConcurrent,
			&job.StaggerSeconds,
			&job.DurationSeconds,
			&job.IntervalMinutes,
			&active,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.StationName = stationName.String
		job.StationURL = stationURL.String
		job.CountryFilter = countryFilter.String
		job.Active = active != 0
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			job.CreatedAt = ts
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
