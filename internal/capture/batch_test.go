package capture

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRunBatchBoundsConcurrency(t *testing.T) {
	cfg := testConfig(t)
	runner := &fakeRunner{writeFile: true, delay: 20 * time.Millisecond}
	executor := NewExecutor(cfg, runner, nil, nil, nil)

	tasks := make([]Task, 0, 25)
	for i := 0; i < 25; i++ {
		tasks = append(tasks, testTask(cfg, fmt.Sprintf("station-%02d", i), 30*time.Second))
	}

	results := executor.RunBatch(context.Background(), tasks, 5, time.Millisecond)

	if len(results) != len(tasks) {
		t.Fatalf("results = %d, want %d", len(results), len(tasks))
	}
	if runner.maxActive > 5 {
		t.Fatalf("maxActive = %d, want at most 5", runner.maxActive)
	}
	if runner.calls != len(tasks) {
		t.Fatalf("calls = %d, want %d", runner.calls, len(tasks))
	}
	for i, result := range results {
		if result.Status != StatusSuccess {
			t.Fatalf("task %d status = %s (%s)", i, result.Status, result.Message)
		}
	}
}

func TestRunBatchYieldsOneResultPerTaskWhenCancelled(t *testing.T) {
	cfg := testConfig(t)
	runner := &fakeRunner{delay: time.Minute}
	executor := NewExecutor(cfg, runner, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := make([]Task, 0, 6)
	for i := 0; i < 6; i++ {
		tasks = append(tasks, testTask(cfg, fmt.Sprintf("station-%d", i), 30*time.Second))
	}

	results := executor.RunBatch(ctx, tasks, 2, 0)

	if len(results) != len(tasks) {
		t.Fatalf("results = %d, want one per submitted task", len(results))
	}
	for i, result := range results {
		if result.Status == StatusSuccess {
			t.Fatalf("task %d reported success under a cancelled context", i)
		}
	}
}

func TestRunBatchEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	executor := NewExecutor(cfg, &fakeRunner{}, nil, nil, nil)

	if results := executor.RunBatch(context.Background(), nil, 5, 0); results != nil {
		t.Fatalf("results = %v, want nil for empty input", results)
	}
}

func TestRunBatchDefaultsConcurrencyFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capture.MaxConcurrent = 3
	runner := &fakeRunner{writeFile: true, delay: 20 * time.Millisecond}
	executor := NewExecutor(cfg, runner, nil, nil, nil)

	tasks := make([]Task, 0, 9)
	for i := 0; i < 9; i++ {
		tasks = append(tasks, testTask(cfg, fmt.Sprintf("station-%d", i), 30*time.Second))
	}

	results := executor.RunBatch(context.Background(), tasks, 0, time.Millisecond)

	if len(results) != 9 {
		t.Fatalf("results = %d, want 9", len(results))
	}
	if runner.maxActive > 3 {
		t.Fatalf("maxActive = %d, want at most the configured 3", runner.maxActive)
	}
}
