package scheduler

import (
	"time"

	"aircheck/internal/catalog"
)

// Kind distinguishes single-station jobs from bulk set jobs.
type Kind string

const (
	KindSingle Kind = "single"
	KindBulk   Kind = "bulk"
)

// State is a job's lifecycle phase. Completed and Cancelled are terminal.
type State string

const (
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Job is one registered recording job. Interval zero means fire once.
type Job struct {
	ID       string
	Kind     Kind
	Station  catalog.Station
	Filter   catalog.Filter
	Duration time.Duration
	Interval time.Duration

	// MaxConcurrent and Stagger shape bulk firings; zero values defer to
	// the executor's configuration and the derived stagger respectively.
	MaxConcurrent int
	Stagger       time.Duration

	State     State
	CreatedAt time.Time
	LastFired time.Time
	FireCount int
}

// Once reports whether the job fires a single time.
func (j Job) Once() bool {
	return j.Interval <= 0
}

// cadenceBucket is the alignment granularity for the job's interval.
func (j Job) cadenceBucket() time.Duration {
	if j.Interval >= time.Hour {
		return time.Hour
	}
	return time.Minute
}

// due reports whether the job should fire at the given tick time.
func (j Job) due(now time.Time) bool {
	if j.State != StateActive {
		return false
	}
	if j.Once() {
		return j.FireCount == 0
	}

	bucket := j.cadenceBucket()
	baseline := j.LastFired
	if baseline.IsZero() {
		baseline = j.CreatedAt
	}
	elapsed := now.Truncate(bucket).Sub(baseline.Truncate(bucket))
	step := j.Interval.Truncate(bucket)
	if step < bucket {
		step = bucket
	}
	return elapsed >= step
}
