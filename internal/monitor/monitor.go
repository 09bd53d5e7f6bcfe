package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/probe"
	"aircheck/internal/store"
)

// EndpointProber abstracts the HTTP prober.
type EndpointProber interface {
	Probe(ctx context.Context, url string, timeout time.Duration) probe.Result
}

// StatusSink receives probe outcomes for persistence.
type StatusSink interface {
	UpsertConnectionStatus(ctx context.Context, rec store.StatusRecord) error
}

var errEmptyCatalog = errors.New("station catalog has no probeable stations")

// Monitor probes a rotating window of catalog stations in the background.
type Monitor struct {
	catalog *catalog.Catalog
	prober  EndpointProber
	table   *StatusTable
	sink    StatusSink
	logger  *slog.Logger

	cycle        time.Duration
	probeTimeout time.Duration
	probeDelay   time.Duration
	backoff      time.Duration
	testTimeout  time.Duration
	testWorkers  int

	groupsPerCycle   int
	stationsPerGroup int

	// cursor is the next country index in the rotation. Only the Run
	// goroutine touches it.
	cursor int
}

// New wires a monitor from configuration. sink may be nil when persistence is
// not wanted.
func New(cfg *config.Config, cat *catalog.Catalog, prober EndpointProber, sink StatusSink, logger *slog.Logger) *Monitor {
	return &Monitor{
		catalog:          cat,
		prober:           prober,
		table:            NewStatusTable(),
		sink:             sink,
		logger:           logging.WithComponent(logger, "monitor"),
		cycle:            time.Duration(cfg.Monitor.CycleSeconds) * time.Second,
		probeTimeout:     time.Duration(cfg.Monitor.ProbeTimeoutSeconds) * time.Second,
		probeDelay:       time.Duration(cfg.Monitor.ProbeDelaySeconds) * time.Second,
		backoff:          time.Duration(cfg.Monitor.BackoffSeconds) * time.Second,
		testTimeout:      time.Duration(cfg.Monitor.TestProbeTimeout) * time.Second,
		testWorkers:      cfg.Monitor.TestProbeWorkers,
		groupsPerCycle:   cfg.Monitor.CountryGroups,
		stationsPerGroup: cfg.Monitor.StationsPerGroup,
	}
}

// Table returns the shared health table.
func (m *Monitor) Table() *StatusTable {
	return m.table
}

// Run executes probe cycles until ctx is cancelled. A failed cycle retries
// after the shorter backoff delay instead of waiting out the full cycle.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("connection monitor started",
		logging.Duration("cycle", m.cycle),
		logging.Int("groups_per_cycle", m.groupsPerCycle),
		logging.Int("stations_per_group", m.stationsPerGroup))

	for {
		delay := m.cycle
		if err := m.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info("connection monitor stopped")
				return
			}
			m.logger.Warn("monitor cycle failed", logging.Error(err))
			delay = m.backoff
		}
		select {
		case <-ctx.Done():
			m.logger.Info("connection monitor stopped")
			return
		case <-time.After(delay):
		}
	}
}

// runCycle probes the next window of countries and advances the rotation.
func (m *Monitor) runCycle(ctx context.Context) error {
	countries := m.catalog.Countries()
	if len(countries) == 0 {
		return errEmptyCatalog
	}

	window := m.groupsPerCycle
	if window <= 0 || window > len(countries) {
		window = len(countries)
	}

	var probed int
	for i := 0; i < window; i++ {
		country := countries[(m.cursor+i)%len(countries)]
		stations := m.catalog.ByCountry(country)
		if m.stationsPerGroup > 0 && len(stations) > m.stationsPerGroup {
			stations = stations[:m.stationsPerGroup]
		}
		for _, station := range stations {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.probeStation(ctx, station, m.probeTimeout)
			probed++
			if m.probeDelay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(m.probeDelay):
				}
			}
		}
	}

	m.cursor = (m.cursor + window) % len(countries)
	m.logger.Debug("monitor cycle finished",
		logging.Int("stations_probed", probed),
		logging.Int("tracked", m.table.Len()))
	return nil
}

// probeStation checks one endpoint and records the outcome in the table, the
// metrics, and the store. Persistence failures are logged, never fatal.
func (m *Monitor) probeStation(ctx context.Context, station catalog.Station, timeout time.Duration) Entry {
	result := m.prober.Probe(ctx, station.URL, timeout)

	status := StatusOffline
	if result.Reachable {
		status = StatusOnline
	}
	entry := Entry{
		Station:   station,
		Status:    status,
		Latency:   result.Latency,
		CheckedAt: time.Now().UTC(),
	}
	m.table.Set(entry)
	metrics.ObserveProbe(result.Reachable)

	if m.sink != nil {
		rec := store.StatusRecord{
			StationName: station.Name,
			StationURL:  station.URL,
			Status:      string(status),
			Latency:     entry.Latency,
			Country:     station.Country,
			City:        station.City,
			CheckedAt:   entry.CheckedAt,
		}
		if err := m.sink.UpsertConnectionStatus(ctx, rec); err != nil && ctx.Err() == nil {
			m.logger.Error("persist connection status",
				logging.String(logging.FieldStation, station.Name),
				logging.Error(err))
		}
	}
	return entry
}
