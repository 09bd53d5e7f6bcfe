package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"aircheck/internal/capture"
	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/monitor"
	"aircheck/internal/probe"
	"aircheck/internal/scheduler"
	"aircheck/internal/stats"
	"aircheck/internal/store"
)

// ErrStationNotFound reports a manual-record request naming an unknown station.
var ErrStationNotFound = errors.New("station not found in catalog")

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	catalog   *catalog.Catalog
	prober    *probe.Prober
	collector *stats.Collector
	executor  *capture.Executor
	monitor   *monitor.Monitor
	scheduler *scheduler.Scheduler

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	loops     sync.WaitGroup
	manual    sync.WaitGroup

	api *apiServer
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StartedAt     time.Time
	StationCount  int
	CountryCount  int
	ActiveJobs    int
	TrackedHealth int
	DatabasePath  string
	LockFilePath  string
	Stats         stats.Snapshot
}

// Option adjusts daemon construction, mainly for tests.
type Option func(*options)

type options struct {
	runner  capture.Runner
	prober  monitor.EndpointProber
	catalog *catalog.Catalog
}

// WithRunner substitutes the capture tool invocation.
func WithRunner(runner capture.Runner) Option {
	return func(o *options) { o.runner = runner }
}

// WithProber substitutes the endpoint prober.
func WithProber(prober monitor.EndpointProber) Option {
	return func(o *options) { o.prober = prober }
}

// WithCatalog substitutes a pre-parsed catalog instead of reading the
// configured catalog file.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) { o.catalog = cat }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat := o.catalog
	if cat == nil {
		loaded, err := catalog.Load(cfg.Paths.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load station catalog: %w", err)
		}
		cat = loaded
	}

	d := &Daemon{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "daemon"),
		store:     st,
		catalog:   cat,
		collector: stats.NewCollector(),
		lockPath:  filepath.Join(cfg.Paths.LogDir, "aircheckd.lock"),
	}
	d.lock = flock.New(d.lockPath)

	endpointProber := o.prober
	if endpointProber == nil {
		d.prober = probe.New()
		endpointProber = d.prober
	}

	d.executor = capture.NewExecutor(cfg, o.runner, st, d.collector, logger)
	d.monitor = monitor.New(cfg, cat, endpointProber, st, logger)
	d.scheduler = scheduler.New(cfg, cat, d.executor, st, logger)
	return d, nil
}

// Start acquires the instance lock and launches the monitor, the scheduler,
// and the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another aircheck daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	d.loops.Add(3)
	go func() {
		defer d.loops.Done()
		d.monitor.Run(d.ctx)
	}()
	go func() {
		defer d.loops.Done()
		d.scheduler.Run(d.ctx)
	}()
	go func() {
		defer d.loops.Done()
		d.maintenanceLoop(d.ctx)
	}()

	d.api = newAPIServer(d.cfg, d, d.logger)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.cancel()
			d.loops.Wait()
			_ = d.lock.Unlock()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("aircheck daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("stations", d.catalog.Len()))
	return nil
}

// Stop stops background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.loops.Wait()
	d.manual.Wait()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("aircheck daemon stopped")
}

// Close stops the daemon and releases its resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.prober != nil {
		d.prober.Close()
	}
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or empty when the API is disabled
// or the daemon is not running.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() Status {
	var active int
	for _, job := range d.scheduler.Jobs() {
		if job.State == scheduler.StateActive {
			active++
		}
	}
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StartedAt:     d.startedAt,
		StationCount:  d.catalog.Len(),
		CountryCount:  len(d.catalog.Countries()),
		ActiveJobs:    active,
		TrackedHealth: d.monitor.Table().Len(),
		DatabasePath:  d.store.Path(),
		LockFilePath:  d.lockPath,
		Stats:         d.collector.Snapshot(),
	}
}

// Catalog exposes the loaded station catalog.
func (d *Daemon) Catalog() *catalog.Catalog {
	return d.catalog
}

// Scheduler exposes the job registry.
func (d *Daemon) Scheduler() *scheduler.Scheduler {
	return d.scheduler
}

// HealthTable exposes the monitor's status table.
func (d *Daemon) HealthTable() *monitor.StatusTable {
	return d.monitor.Table()
}

// maintenanceLoop prunes aged history rows whose files are gone, once at
// startup and then daily.
func (d *Daemon) maintenanceLoop(ctx context.Context) {
	retention := time.Duration(d.cfg.Store.RetentionDays) * 24 * time.Hour
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		pruned, err := d.store.PruneRecordings(ctx, retention)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			d.logger.Warn("prune recording history", logging.Error(err))
		case pruned > 0:
			d.logger.Info("pruned recording history", logging.Int64("rows", pruned))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// TriggerManual starts a one-off recording in the background, bypassing the
// scheduler. It returns the task so callers can report the output path.
func (d *Daemon) TriggerManual(country, stationName string, duration time.Duration) (capture.Task, error) {
	if duration <= 0 {
		return capture.Task{}, scheduler.ErrInvalidDuration
	}
	resolved := d.catalog.NormalizeCountry(country)
	station, ok := d.catalog.Find(resolved, stationName)
	if !ok {
		return capture.Task{}, fmt.Errorf("%w: %s", ErrStationNotFound, stationName)
	}

	task := capture.NewTask(d.cfg.Paths.RecordingsDir, station, duration, "", time.Now().UTC())
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	d.manual.Add(1)
	go func() {
		defer d.manual.Done()
		d.executor.Execute(ctx, task)
	}()

	d.logger.Info("manual recording started",
		logging.String(logging.FieldStation, station.Name),
		logging.Duration("duration", duration))
	return task, nil
}

// TestAllStations probes every station matching the filter with the
// short-test worker pool and refreshes the health table.
func (d *Daemon) TestAllStations(ctx context.Context, country string, maxStations int) []monitor.BulkResult {
	filter := catalog.Filter{Country: d.catalog.NormalizeCountry(country), Max: maxStations}
	return d.monitor.TestAll(ctx, filter)
}
