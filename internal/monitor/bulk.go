package monitor

import (
	"context"
	"sync"
	"time"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
)

// BulkResult is one station's outcome from an on-demand connection test.
type BulkResult struct {
	Station catalog.Station
	Status  Status
	Latency time.Duration
}

// TestAll probes every station matching the filter using a short per-probe
// timeout and a bounded worker pool. Results come back in catalog order;
// stations skipped by cancellation report StatusUntested. The shared table is
// updated along the way, so an on-demand test refreshes the monitor's view.
func (m *Monitor) TestAll(ctx context.Context, filter catalog.Filter) []BulkResult {
	stations := m.catalog.Select(filter)
	if len(stations) == 0 {
		return nil
	}

	results := make([]BulkResult, len(stations))
	for i, station := range stations {
		results[i] = BulkResult{Station: station, Status: StatusUntested}
	}

	workers := m.testWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(stations) {
		workers = len(stations)
	}

	m.logger.Info("bulk connection test started",
		logging.Int("stations", len(stations)),
		logging.Int("workers", workers))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := m.probeStation(ctx, stations[i], m.testTimeout)
				results[i].Status = entry.Status
				results[i].Latency = entry.Latency
			}
		}()
	}

feed:
	for i := range stations {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var online int
	for _, result := range results {
		if result.Status == StatusOnline {
			online++
		}
	}
	m.logger.Info("bulk connection test finished",
		logging.Int("stations", len(stations)),
		logging.Int("online", online))
	return results
}
