package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aircheck/internal/capture"
	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/store"
)

var (
	ErrJobNotFound       = errors.New("scheduled job not found")
	ErrIntervalTooShort  = errors.New("interval below the scheduler minimum")
	ErrInvalidDuration   = errors.New("recording duration must be positive")
	ErrMissingStation    = errors.New("station has no stream URL")
	ErrNoMatchingStation = errors.New("no stations match the bulk filter")
)

// minDerivedStagger is the floor for the stagger computed from a bulk job's
// interval, so large sets never start all at once.
const minDerivedStagger = 10 * time.Second

// BatchRunner executes a set of capture tasks with bounded concurrency.
type BatchRunner interface {
	RunBatch(ctx context.Context, tasks []capture.Task, maxConcurrent int, stagger time.Duration) []capture.Result
}

// Journal persists job registrations for restart visibility. The in-memory
// registry stays authoritative while the process runs.
type Journal interface {
	SaveJob(ctx context.Context, job store.JobRecord) error
	DeactivateJob(ctx context.Context, id string) (bool, error)
}

// Scheduler owns the job registry and the tick loop.
type Scheduler struct {
	catalog       *catalog.Catalog
	runner        BatchRunner
	journal       Journal
	logger        *slog.Logger
	recordingsDir string
	tick          time.Duration
	minInterval   time.Duration

	mu   sync.Mutex
	jobs map[string]*Job

	firings sync.WaitGroup

	// indirected for tests
	newID func() string
	now   func() time.Time
}

// New wires a scheduler from configuration. journal may be nil.
func New(cfg *config.Config, cat *catalog.Catalog, runner BatchRunner, journal Journal, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		catalog:       cat,
		runner:        runner,
		journal:       journal,
		logger:        logging.WithComponent(logger, "scheduler"),
		recordingsDir: cfg.Paths.RecordingsDir,
		tick:          time.Duration(cfg.Scheduler.TickSeconds) * time.Second,
		minInterval:   time.Duration(cfg.Scheduler.MinIntervalMinutes) * time.Minute,
		jobs:          make(map[string]*Job),
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// RegisterSingle adds a job recording one station, once when interval is
// zero, otherwise on the interval cadence.
func (s *Scheduler) RegisterSingle(ctx context.Context, station catalog.Station, duration, interval time.Duration) (Job, error) {
	if station.URL == "" {
		return Job{}, ErrMissingStation
	}
	job := Job{
		Kind:     KindSingle,
		Station:  station,
		Duration: duration,
		Interval: interval,
	}
	return s.register(ctx, job)
}

// RegisterBulk adds a job recording every station matching the filter. The
// filter must match at least one station at registration time.
func (s *Scheduler) RegisterBulk(ctx context.Context, filter catalog.Filter, duration, interval time.Duration, maxConcurrent int, stagger time.Duration) (Job, error) {
	if len(s.catalog.Select(filter)) == 0 {
		return Job{}, ErrNoMatchingStation
	}
	job := Job{
		Kind:          KindBulk,
		Filter:        filter,
		Duration:      duration,
		Interval:      interval,
		MaxConcurrent: maxConcurrent,
		Stagger:       stagger,
	}
	return s.register(ctx, job)
}

func (s *Scheduler) register(ctx context.Context, job Job) (Job, error) {
	if job.Duration <= 0 {
		return Job{}, ErrInvalidDuration
	}
	if job.Interval != 0 && job.Interval < s.minInterval {
		return Job{}, fmt.Errorf("%w: %s < %s", ErrIntervalTooShort, job.Interval, s.minInterval)
	}

	job.ID = s.newID()
	job.State = StateActive
	job.CreatedAt = s.now().UTC()

	if s.journal != nil {
		if err := s.journal.SaveJob(ctx, jobRecord(job)); err != nil {
			return Job{}, fmt.Errorf("persist job: %w", err)
		}
	}

	s.mu.Lock()
	s.jobs[job.ID] = &job
	s.mu.Unlock()
	metrics.ActiveJobs.Inc()

	s.logger.Info("job registered",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("kind", string(job.Kind)),
		logging.Duration("interval", job.Interval))
	return job, nil
}

// Cancel terminates an active job. Cancellation is idempotent in the
// not-found sense: a second cancel, or a cancel of a completed job, reports
// ErrJobNotFound and changes nothing. In-flight firings run to completion.
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.State != StateActive {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	job.State = StateCancelled
	s.mu.Unlock()
	metrics.ActiveJobs.Dec()

	if s.journal != nil {
		if _, err := s.journal.DeactivateJob(ctx, id); err != nil {
			s.logger.Error("deactivate job in journal",
				logging.String(logging.FieldJobID, id),
				logging.Error(err))
		}
	}
	s.logger.Info("job cancelled", logging.String(logging.FieldJobID, id))
	return nil
}

// Get returns a snapshot of one job.
func (s *Scheduler) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		return *job, true
	}
	return Job{}, false
}

// Jobs returns a snapshot of the registry, oldest first.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// Run scans the registry on every tick until ctx is cancelled, then waits for
// in-flight firings to drain.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	s.logger.Info("scheduler started", logging.Duration("tick", s.tick))

	for {
		select {
		case <-ctx.Done():
			s.firings.Wait()
			s.logger.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			s.tickOnce(ctx, now)
		}
	}
}

// firing is one due job expanded into its tasks.
type firing struct {
	job           Job
	tasks         []capture.Task
	maxConcurrent int
	stagger       time.Duration
}

// tickOnce marks due jobs as fired and launches their batches. Expansion uses
// the catalog as it is now, not as it was at registration; a job whose
// stations have since vanished logs and stays active.
func (s *Scheduler) tickOnce(ctx context.Context, now time.Time) {
	now = now.UTC()

	s.mu.Lock()
	var due []firing
	for _, job := range s.jobs {
		if !job.due(now) {
			continue
		}
		job.LastFired = now
		job.FireCount++
		if job.Once() {
			job.State = StateCompleted
			metrics.ActiveJobs.Dec()
			if s.journal != nil {
				if _, err := s.journal.DeactivateJob(ctx, job.ID); err != nil {
					s.logger.Error("deactivate completed job",
						logging.String(logging.FieldJobID, job.ID),
						logging.Error(err))
				}
			}
		}
		due = append(due, s.expand(*job, now))
	}
	s.mu.Unlock()

	for _, f := range due {
		if len(f.tasks) == 0 {
			s.logger.Warn("job expanded to no tasks, skipping firing",
				logging.String(logging.FieldJobID, f.job.ID))
			continue
		}
		s.logger.Info("job firing",
			logging.String(logging.FieldJobID, f.job.ID),
			logging.Int("tasks", len(f.tasks)),
			logging.Duration("stagger", f.stagger))
		s.firings.Add(1)
		go func(f firing) {
			defer s.firings.Done()
			s.runner.RunBatch(ctx, f.tasks, f.maxConcurrent, f.stagger)
		}(f)
	}
}

// expand resolves a job into concrete capture tasks.
func (s *Scheduler) expand(job Job, now time.Time) firing {
	f := firing{job: job, maxConcurrent: job.MaxConcurrent, stagger: job.Stagger}

	switch job.Kind {
	case KindBulk:
		stations := s.catalog.Select(job.Filter)
		for _, station := range stations {
			f.tasks = append(f.tasks, capture.NewTask(s.recordingsDir, station, job.Duration, job.ID, now))
		}
		if f.stagger <= 0 {
			f.stagger = derivedStagger(job.Interval, len(stations))
		}
	default:
		f.tasks = append(f.tasks, capture.NewTask(s.recordingsDir, job.Station, job.Duration, job.ID, now))
	}
	return f
}

// derivedStagger spreads a bulk firing across its interval so every station
// still gets recorded before the next firing, with a floor for small sets.
func derivedStagger(interval time.Duration, count int) time.Duration {
	if count <= 0 {
		return minDerivedStagger
	}
	spread := interval / time.Duration(count)
	if spread < minDerivedStagger {
		return minDerivedStagger
	}
	return spread
}

func jobRecord(job Job) store.JobRecord {
	return store.JobRecord{
		ID:              job.ID,
		Kind:            string(job.Kind),
		StationName:     job.Station.Name,
		StationURL:      job.Station.URL,
		CountryFilter:   job.Filter.Country,
		MaxStations:     job.Filter.Max,
		MaxConcurrent:   job.MaxConcurrent,
		StaggerSeconds:  int(job.Stagger / time.Second),
		DurationSeconds: int(job.Duration / time.Second),
		IntervalMinutes: int(job.Interval / time.Minute),
		Active:          true,
		CreatedAt:       job.CreatedAt,
	}
}
