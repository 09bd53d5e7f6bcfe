package api

import "time"

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running       bool      `json:"running"`
	PID           int       `json:"pid"`
	StartedAt     time.Time `json:"started_at"`
	StationCount  int       `json:"station_count"`
	CountryCount  int       `json:"country_count"`
	ActiveJobs    int       `json:"active_jobs"`
	TrackedHealth int       `json:"tracked_health"`
	DatabasePath  string    `json:"database_path"`
	LockFilePath  string    `json:"lock_file_path"`
	Stats         Stats     `json:"stats"`
}

// Stats mirrors the in-memory capture counters.
type Stats struct {
	Total           int64     `json:"total"`
	Succeeded       int64     `json:"succeeded"`
	Failed          int64     `json:"failed"`
	TimedOut        int64     `json:"timed_out"`
	RecordedSeconds int64     `json:"recorded_seconds"`
	SuccessRate     float64   `json:"success_rate"`
	LastActivity    time.Time `json:"last_activity,omitzero"`
}

// Station is the wire form of a catalog entry.
type Station struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Language string `json:"language,omitempty"`
}

// StationListResponse wraps a station listing.
type StationListResponse struct {
	Stations []Station `json:"stations"`
}

// CountryListResponse lists countries with at least one station.
type CountryListResponse struct {
	Countries []string `json:"countries"`
}

// ConnectionStatus is one station's latest probe outcome.
type ConnectionStatus struct {
	Station   Station   `json:"station"`
	Status    string    `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at,omitzero"`
}

// StatusListResponse wraps the monitor's health table.
type StatusListResponse struct {
	Statuses []ConnectionStatus `json:"statuses"`
}

// Statistics combines persisted history totals with live counters.
type Statistics struct {
	Total           int64     `json:"total"`
	Succeeded       int64     `json:"succeeded"`
	Failed          int64     `json:"failed"`
	TimedOut        int64     `json:"timed_out"`
	RecordedSeconds int64     `json:"recorded_seconds"`
	LastRecording   time.Time `json:"last_recording,omitzero"`
	Session         Stats     `json:"session"`
}

// Job is the wire form of a scheduled job.
type Job struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	StationName     string    `json:"station_name,omitempty"`
	Country         string    `json:"country,omitempty"`
	MaxStations     int       `json:"max_stations,omitempty"`
	MaxConcurrent   int       `json:"max_concurrent,omitempty"`
	StaggerSeconds  int       `json:"stagger_seconds,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	IntervalMinutes int       `json:"interval_minutes"`
	State           string    `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
	LastFired       time.Time `json:"last_fired,omitzero"`
	FireCount       int       `json:"fire_count"`
}

// JobListResponse wraps the scheduler registry.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// RegisterJobRequest creates a scheduled job. Kind "single" requires a
// station name; kind "bulk" takes a country filter ("" or "All Countries"
// selects everything) with an optional station cap.
type RegisterJobRequest struct {
	Kind            string `json:"kind"`
	StationName     string `json:"station_name,omitempty"`
	Country         string `json:"country,omitempty"`
	MaxStations     int    `json:"max_stations,omitempty"`
	MaxConcurrent   int    `json:"max_concurrent,omitempty"`
	StaggerSeconds  int    `json:"stagger_seconds,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	IntervalMinutes int    `json:"interval_minutes"`
}

// RegisterJobResponse returns the accepted job.
type RegisterJobResponse struct {
	Job Job `json:"job"`
}

// RecordRequest triggers a one-off manual recording.
type RecordRequest struct {
	StationName     string `json:"station_name"`
	Country         string `json:"country,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// RecordResponse acknowledges a manual recording that runs in the background.
type RecordResponse struct {
	Station    Station `json:"station"`
	OutputPath string  `json:"output_path"`
}

// BulkTestRequest runs an on-demand connection test.
type BulkTestRequest struct {
	Country     string `json:"country,omitempty"`
	MaxStations int    `json:"max_stations,omitempty"`
}

// BulkTestResponse summarizes an on-demand connection test.
type BulkTestResponse struct {
	Tested   int                `json:"tested"`
	Online   int                `json:"online"`
	Statuses []ConnectionStatus `json:"statuses"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
