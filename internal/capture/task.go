package capture

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"aircheck/internal/catalog"
)

// Task is one bounded capture attempt against a station endpoint.
type Task struct {
	Station    catalog.Station
	Duration   time.Duration
	OutputPath string
	JobID      string
	CreatedAt  time.Time
}

// NewTask builds a task with its output path derived from the station's
// location tags: <recordingsDir>/<country>/<city>/<name>_<timestamp>.mp3.
// Stations without location tags land directly under the recordings root.
func NewTask(recordingsDir string, station catalog.Station, duration time.Duration, jobID string, now time.Time) Task {
	dir := recordingsDir
	if component := pathComponent(station.Country); component != "" {
		dir = filepath.Join(dir, component)
	}
	if component := pathComponent(station.City); component != "" {
		dir = filepath.Join(dir, component)
	}

	name := safeName(station.Name)
	filename := name + "_" + now.Format("20060102_150405") + ".mp3"

	return Task{
		Station:    station,
		Duration:   duration,
		OutputPath: filepath.Join(dir, filename),
		JobID:      jobID,
		CreatedAt:  now,
	}
}

// safeName strips a station name down to characters safe in a filename.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "station"
	}
	return cleaned
}

// pathComponent turns a location tag into a directory name, with spaces
// collapsed to underscores. Empty tags yield no directory level.
func pathComponent(value string) string {
	cleaned := safeName(value)
	if cleaned == "station" && strings.TrimSpace(value) == "" {
		return ""
	}
	return strings.ReplaceAll(cleaned, " ", "_")
}
