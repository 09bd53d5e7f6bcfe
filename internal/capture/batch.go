package capture

import (
	"context"
	"sync"
	"time"

	"aircheck/internal/logging"
	"aircheck/internal/metrics"
)

// RunBatch executes tasks in sequential groups of at most maxConcurrent,
// fully parallel within each group. Between groups it sleeps for stagger, or
// the configured batch delay when stagger is zero. Every task yields exactly
// one Result; cancellation does not drop tasks, it only makes the remaining
// ones fail fast.
func (e *Executor) RunBatch(ctx context.Context, tasks []Task, maxConcurrent int, stagger time.Duration) []Result {
	if len(tasks) == 0 {
		return nil
	}
	if maxConcurrent <= 0 {
		maxConcurrent = e.maxConcurrent
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	delay := stagger
	if delay <= 0 {
		delay = e.batchDelay
	}

	e.logger.Info("batch started",
		logging.Int("tasks", len(tasks)),
		logging.Int("max_concurrent", maxConcurrent),
		logging.Duration("stagger", delay))

	results := make([]Result, 0, len(tasks))
	for offset := 0; offset < len(tasks); offset += maxConcurrent {
		end := offset + maxConcurrent
		if end > len(tasks) {
			end = len(tasks)
		}
		group := tasks[offset:end]

		metrics.BatchInFlight.Set(float64(len(group)))
		groupResults := make([]Result, len(group))
		var wg sync.WaitGroup
		for i, task := range group {
			wg.Add(1)
			go func(slot int, task Task) {
				defer wg.Done()
				groupResults[slot] = e.Execute(ctx, task)
			}(i, task)
		}
		wg.Wait()
		metrics.BatchInFlight.Set(0)
		results = append(results, groupResults...)

		if end < len(tasks) && delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	var succeeded int
	for _, result := range results {
		if result.Status == StatusSuccess {
			succeeded++
		}
	}
	e.logger.Info("batch finished",
		logging.Int("tasks", len(tasks)),
		logging.Int("succeeded", succeeded))
	return results
}
