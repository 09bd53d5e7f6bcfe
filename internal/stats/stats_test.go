package stats_test

import (
	"sync"
	"testing"
	"time"

	"aircheck/internal/stats"
)

func TestCollectorCounts(t *testing.T) {
	c := stats.NewCollector()
	c.RecordSuccess(30 * time.Second)
	c.RecordSuccess(60 * time.Second)
	c.RecordFailure()
	c.RecordTimeout()

	snap := c.Snapshot()
	if snap.Total != 4 {
		t.Fatalf("Total = %d, want 4", snap.Total)
	}
	if snap.Succeeded != 2 || snap.Failed != 1 || snap.TimedOut != 1 {
		t.Fatalf("Succeeded/Failed/TimedOut = %d/%d/%d", snap.Succeeded, snap.Failed, snap.TimedOut)
	}
	if snap.RecordedDuration != 90*time.Second {
		t.Fatalf("RecordedDuration = %v, want 90s", snap.RecordedDuration)
	}
	if snap.LastActivity.IsZero() {
		t.Fatal("LastActivity not set")
	}
	if rate := snap.SuccessRate(); rate != 0.5 {
		t.Fatalf("SuccessRate = %v, want 0.5", rate)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := stats.NewCollector().Snapshot()
	if snap.Total != 0 || !snap.LastActivity.IsZero() {
		t.Fatalf("unexpected snapshot for empty collector: %+v", snap)
	}
	if snap.SuccessRate() != 0 {
		t.Fatal("SuccessRate of empty collector should be 0")
	}
}

func TestCollectorConcurrentUpdates(t *testing.T) {
	c := stats.NewCollector()
	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				switch j % 3 {
				case 0:
					c.RecordSuccess(time.Second)
				case 1:
					c.RecordFailure()
				default:
					c.RecordTimeout()
				}
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Total != workers*perWorker {
		t.Fatalf("Total = %d, want %d", snap.Total, workers*perWorker)
	}
	if snap.Succeeded+snap.Failed+snap.TimedOut != snap.Total {
		t.Fatalf("counter sum %d != total %d", snap.Succeeded+snap.Failed+snap.TimedOut, snap.Total)
	}
}
