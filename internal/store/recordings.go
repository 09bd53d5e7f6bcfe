package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Recording is one persisted capture attempt.
type Recording struct {
	ID              int64
	StationName     string
	StationURL      string
	Country         string
	City            string
	DurationSeconds int
	FilePath        string
	Status          string
	FileSize        int64
	ErrorMessage    string
	JobID           string
	CreatedAt       time.Time
}

// Totals aggregates capture history for statistics queries.
type Totals struct {
	Total           int64
	Succeeded       int64
	Failed          int64
	TimedOut        int64
	RecordedSeconds int64
	LastRecording   time.Time
}

const recordingColumns = `id, station_name, station_url, country, city,
    duration_seconds, file_path, status, file_size, error_message, job_id, created_at`

// RecordCapture appends one capture result to the history log.
func (s *Store) RecordCapture(ctx context.Context, rec Recording) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO recordings (
            station_name, station_url, country, city, duration_seconds,
            file_path, status, file_size, error_message, job_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StationName,
		rec.StationURL,
		nullableString(rec.Country),
		nullableString(rec.City),
		rec.DurationSeconds,
		nullableString(rec.FilePath),
		rec.Status,
		rec.FileSize,
		nullableString(rec.ErrorMessage),
		nullableString(rec.JobID),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}
	return nil
}

// RecentRecordings returns the newest capture rows, most recent first.
func (s *Store) RecentRecordings(ctx context.Context, limit int) ([]Recording, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordingColumns+` FROM recordings ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent recordings: %w", err)
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

// Statistics aggregates the capture history into totals.
func (s *Store) Statistics(ctx context.Context) (Totals, error) {
	var totals Totals
	var last sql.NullString
	err := s.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'timeout' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'success' THEN duration_seconds ELSE 0 END), 0),
            MAX(created_at)
        FROM recordings`,
	).Scan(&totals.Total, &totals.Succeeded, &totals.Failed, &totals.TimedOut, &totals.RecordedSeconds, &last)
	if err != nil {
		return Totals{}, fmt.Errorf("aggregate statistics: %w", err)
	}
	if last.Valid {
		if ts, parseErr := time.Parse(time.RFC3339Nano, last.String); parseErr == nil {
			totals.LastRecording = ts
		}
	}
	return totals, nil
}

// ExportCSV writes the full recording history as CSV.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordingColumns+` FROM recordings ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("query recordings for export: %w", err)
	}
	defer rows.Close()

	writer := csv.NewWriter(w)
	header := []string{"id", "station_name", "station_url", "country", "city",
		"duration_seconds", "file_path", "status", "file_size", "error_message", "job_id", "created_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return err
		}
		record := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.StationName,
			rec.StationURL,
			rec.Country,
			rec.City,
			strconv.Itoa(rec.DurationSeconds),
			rec.FilePath,
			rec.Status,
			strconv.FormatInt(rec.FileSize, 10),
			rec.ErrorMessage,
			rec.JobID,
			rec.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// PruneRecordings removes history rows older than the retention window whose
// files no longer exist on disk. Rows with a surviving file are kept so the
// history matches what is actually on disk.
func (s *Store) PruneRecordings(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, file_path FROM recordings WHERE created_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("query prunable recordings: %w", err)
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var id int64
		var path sql.NullString
		if err := rows.Scan(&id, &path); err != nil {
			return 0, fmt.Errorf("scan prunable row: %w", err)
		}
		if path.Valid && path.String != "" {
			if _, statErr := os.Stat(path.String); statErr == nil {
				continue
			}
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var pruned int64
	for _, id := range stale {
		res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
		if err != nil {
			return pruned, fmt.Errorf("delete recording %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		pruned += n
	}
	return pruned, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (Recording, error) {
	var rec Recording
	var country, city, filePath, errorMessage, jobID sql.NullString
	var createdAt string

	err := row.Scan(
		&rec.ID,
		&rec.StationName,
		&rec.StationURL,
		&country,
		&city,
		&rec.DurationSeconds,
		&filePath,
		&rec.Status,
		&rec.FileSize,
		&errorMessage,
		&jobID,
		&createdAt,
	)
	if err != nil {
		return Recording{}, fmt.Errorf("scan recording: %w", err)
	}

	rec.Country = country.String
	rec.City = city.String
	rec.FilePath = filePath.String
	rec.ErrorMessage = errorMessage.String
	rec.JobID = jobID.String
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}
