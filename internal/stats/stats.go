// Package stats keeps running counters for capture activity.
//
// Many capture workers complete concurrently, so every update is a single
// atomic operation; there is no read-modify-write on shared counters.
// Snapshot is safe to call from any goroutine and tolerates concurrent
// updates (values are read independently, not as one consistent cut).
package stats

import (
	"sync/atomic"
	"time"
)

// Collector accumulates capture outcome counters.
type Collector struct {
	total           atomic.Int64
	succeeded       atomic.Int64
	failed          atomic.Int64
	timedOut        atomic.Int64
	recordedSeconds atomic.Int64
	lastActivity    atomic.Int64 // unix seconds, 0 when untouched
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Total            int64
	Succeeded        int64
	Failed           int64
	TimedOut         int64
	RecordedDuration time.Duration
	LastActivity     time.Time
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordSuccess counts one successful capture of the given duration.
func (c *Collector) RecordSuccess(duration time.Duration) {
	c.total.Add(1)
	c.succeeded.Add(1)
	c.recordedSeconds.Add(int64(duration.Seconds()))
	c.touch()
}

// RecordFailure counts one failed capture.
func (c *Collector) RecordFailure() {
	c.total.Add(1)
	c.failed.Add(1)
	c.touch()
}

// RecordTimeout counts one timed-out capture. Timeouts are failures for
// success-rate purposes but tracked separately.
func (c *Collector) RecordTimeout() {
	c.total.Add(1)
	c.timedOut.Add(1)
	c.touch()
}

func (c *Collector) touch() {
	c.lastActivity.Store(time.Now().Unix())
}

// Snapshot returns a copy of the current counter values.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		Total:            c.total.Load(),
		Succeeded:        c.succeeded.Load(),
		Failed:           c.failed.Load(),
		TimedOut:         c.timedOut.Load(),
		RecordedDuration: time.Duration(c.recordedSeconds.Load()) * time.Second,
	}
	if ts := c.lastActivity.Load(); ts > 0 {
		snap.LastActivity = time.Unix(ts, 0)
	}
	return snap
}

// SuccessRate returns the fraction of captures that succeeded, or 0 when no
// capture has completed yet.
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}
