package api

import (
	"time"

	"aircheck/internal/catalog"
	"aircheck/internal/monitor"
	"aircheck/internal/scheduler"
	"aircheck/internal/stats"
	"aircheck/internal/store"
)

// FromStation converts a catalog entry to its wire form.
func FromStation(s catalog.Station) Station {
	return Station{
		Name:     s.Name,
		URL:      s.URL,
		Country:  s.Country,
		City:     s.City,
		Bitrate:  s.Bitrate,
		Language: s.Language,
	}
}

// FromStations converts a catalog selection.
func FromStations(stations []catalog.Station) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		out = append(out, FromStation(s))
	}
	return out
}

// FromEntry converts a monitor table entry.
func FromEntry(e monitor.Entry) ConnectionStatus {
	return ConnectionStatus{
		Station:   FromStation(e.Station),
		Status:    string(e.Status),
		LatencyMS: e.Latency.Milliseconds(),
		CheckedAt: e.CheckedAt,
	}
}

// FromSnapshot converts live capture counters.
func FromSnapshot(snap stats.Snapshot) Stats {
	return Stats{
		Total:           snap.Total,
		Succeeded:       snap.Succeeded,
		Failed:          snap.Failed,
		TimedOut:        snap.TimedOut,
		RecordedSeconds: int64(snap.RecordedDuration / time.Second),
		SuccessRate:     snap.SuccessRate(),
		LastActivity:    snap.LastActivity,
	}
}

// FromTotals combines persisted totals with a live snapshot.
func FromTotals(totals store.Totals, snap stats.Snapshot) Statistics {
	return Statistics{
		Total:           totals.Total,
		Succeeded:       totals.Succeeded,
		Failed:          totals.Failed,
		TimedOut:        totals.TimedOut,
		RecordedSeconds: totals.RecordedSeconds,
		LastRecording:   totals.LastRecording,
		Session:         FromSnapshot(snap),
	}
}

// FromJob converts a scheduler job.
func FromJob(j scheduler.Job) Job {
	return Job{
		ID:              j.ID,
		Kind:            string(j.Kind),
		StationName:     j.Station.Name,
		Country:         j.Filter.Country,
		MaxStations:     j.Filter.Max,
		MaxConcurrent:   j.MaxConcurrent,
		StaggerSeconds:  int(j.Stagger / time.Second),
		DurationSeconds: int(j.Duration / time.Second),
		IntervalMinutes: int(j.Interval / time.Minute),
		State:           string(j.State),
		CreatedAt:       j.CreatedAt,
		LastFired:       j.LastFired,
		FireCount:       j.FireCount,
	}
}

// FromJobs converts a registry snapshot.
func FromJobs(jobs []scheduler.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, FromJob(j))
	}
	return out
}

// FromBulkResults converts on-demand test outcomes.
func FromBulkResults(results []monitor.BulkResult) BulkTestResponse {
	resp := BulkTestResponse{Tested: len(results)}
	for _, result := range results {
		if result.Status == monitor.StatusOnline {
			resp.Online++
		}
		resp.Statuses = append(resp.Statuses, ConnectionStatus{
			Station:   FromStation(result.Station),
			Status:    string(result.Status),
			LatencyMS: result.Latency.Milliseconds(),
		})
	}
	return resp
}
