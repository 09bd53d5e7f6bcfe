package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/stats"
	"aircheck/internal/store"
)

// Status classifies the outcome of one capture attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// maxMessageLength caps stored failure details so one noisy tool run cannot
// bloat the history log.
const maxMessageLength = 500

// persistTimeout bounds the history write so a slow disk cannot stall the
// worker that just finished a capture.
const persistTimeout = 5 * time.Second

// Result is the normalized outcome of one task. Execute always returns a
// Result; it never returns an error and never panics.
type Result struct {
	Task         Task
	Status       Status
	BytesWritten int64
	Elapsed      time.Duration
	Message      string
}

// HistorySink receives finished capture results for persistence.
type HistorySink interface {
	RecordCapture(ctx context.Context, rec store.Recording) error
}

// Executor runs capture tasks through a Runner and records every outcome.
type Executor struct {
	runner        Runner
	sink          HistorySink
	collector     *stats.Collector
	logger        *slog.Logger
	grace         time.Duration
	batchDelay    time.Duration
	maxConcurrent int
}

// NewExecutor wires an executor from configuration. A nil runner defaults to
// the ffmpeg CLI; sink may be nil when persistence is not wanted.
func NewExecutor(cfg *config.Config, runner Runner, sink HistorySink, collector *stats.Collector, logger *slog.Logger) *Executor {
	if runner == nil {
		runner = NewCLI(cfg)
	}
	if collector == nil {
		collector = stats.NewCollector()
	}
	return &Executor{
		runner:        runner,
		sink:          sink,
		collector:     collector,
		logger:        logging.WithComponent(logger, "capture"),
		grace:         cfg.CaptureGrace(),
		batchDelay:    time.Duration(cfg.Capture.BatchDelaySeconds) * time.Second,
		maxConcurrent: cfg.Capture.MaxConcurrent,
	}
}

// Stats returns the executor's shared counter set.
func (e *Executor) Stats() *stats.Collector {
	return e.collector
}

// Execute runs one task to completion. The underlying tool is given the task
// duration plus a grace period before it is forcibly terminated; termination
// by that deadline yields StatusTimeout, every other abnormal end yields
// StatusFailed. A panic from the runner is converted to a failed result.
func (e *Executor) Execute(ctx context.Context, task Task) (result Result) {
	start := time.Now()
	result = Result{Task: task, Status: StatusFailed}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailed
			result.BytesWritten = 0
			result.Message = truncateMessage(fmt.Sprintf("capture panic: %v", r))
		}
		if result.Elapsed == 0 {
			result.Elapsed = time.Since(start)
		}
		e.record(result)
	}()

	if err := os.MkdirAll(filepath.Dir(task.OutputPath), 0o755); err != nil {
		result.Message = truncateMessage(fmt.Sprintf("create output directory: %v", err))
		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, task.Duration+e.grace)
	defer cancel()

	err := e.runner.Capture(runCtx, task.Station.URL, task.Duration, task.OutputPath)
	result.Elapsed = time.Since(start)

	switch {
	case err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Message = fmt.Sprintf("terminated after %s (limit %s)",
			result.Elapsed.Round(time.Second), task.Duration+e.grace)
	case err != nil:
		result.Status = StatusFailed
		result.Message = truncateMessage(err.Error())
	default:
		info, statErr := os.Stat(task.OutputPath)
		if statErr != nil {
			result.Status = StatusFailed
			result.Message = "capture tool exited cleanly but produced no output file"
		} else {
			result.Status = StatusSuccess
			result.BytesWritten = info.Size()
		}
	}
	return result
}

// record updates counters, metrics, and the history log for one result. The
// history write uses its own context so a cancelled batch still leaves a row.
func (e *Executor) record(result Result) {
	task := result.Task
	switch result.Status {
	case StatusSuccess:
		e.collector.RecordSuccess(task.Duration)
	case StatusTimeout:
		e.collector.RecordTimeout()
	default:
		e.collector.RecordFailure()
	}
	metrics.ObserveCapture(string(result.Status), result.BytesWritten)

	attrs := logging.Args(
		logging.String(logging.FieldStation, task.Station.Name),
		logging.String(logging.FieldStatus, string(result.Status)),
		logging.Duration("elapsed", result.Elapsed),
	)
	if result.Status == StatusSuccess {
		e.logger.Info("capture finished", append(attrs, logging.Int64("bytes", result.BytesWritten))...)
	} else {
		e.logger.Warn("capture "+string(result.Status), append(attrs, logging.String("detail", result.Message))...)
	}

	if e.sink == nil {
		return
	}
	persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	rec := store.Recording{
		StationName:     task.Station.Name,
		StationURL:      task.Station.URL,
		Country:         task.Station.Country,
		City:            task.Station.City,
		DurationSeconds: int(task.Duration / time.Second),
		Status:          string(result.Status),
		ErrorMessage:    result.Message,
		JobID:           task.JobID,
	}
	if result.Status == StatusSuccess {
		rec.FilePath = task.OutputPath
		rec.FileSize = result.BytesWritten
	}
	if err := e.sink.RecordCapture(persistCtx, rec); err != nil {
		e.logger.Error("persist capture result",
			logging.String(logging.FieldStation, task.Station.Name),
			logging.Error(err))
	}
}

func truncateMessage(message string) string {
	if len(message) <= maxMessageLength {
		return message
	}
	return message[:maxMessageLength]
}
