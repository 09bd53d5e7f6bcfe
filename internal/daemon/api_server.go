package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aircheck/internal/api"
	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/scheduler"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/countries", srv.handleCountries)
	mux.HandleFunc("/api/stations", srv.handleStations)
	mux.HandleFunc("/api/statuses", srv.handleStatuses)
	mux.HandleFunc("/api/statistics", srv.handleStatistics)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJob)
	mux.HandleFunc("/api/record", srv.handleRecord)
	mux.HandleFunc("/api/test", srv.handleTest)
	mux.HandleFunc("/api/export", srv.handleExport)
	mux.Handle("/metrics", promhttp.Handler())

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		StartedAt:     status.StartedAt,
		StationCount:  status.StationCount,
		CountryCount:  status.CountryCount,
		ActiveJobs:    status.ActiveJobs,
		TrackedHealth: status.TrackedHealth,
		DatabasePath:  status.DatabasePath,
		LockFilePath:  status.LockFilePath,
		Stats:         api.FromSnapshot(status.Stats),
	})
}

func (s *apiServer) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.CountryListResponse{Countries: s.daemon.catalog.Countries()})
}

func (s *apiServer) handleStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	country := s.daemon.catalog.NormalizeCountry(r.URL.Query().Get("country"))
	stations := s.daemon.catalog.Select(catalog.Filter{Country: country})
	s.writeJSON(w, http.StatusOK, api.StationListResponse{Stations: api.FromStations(stations)})
}

func (s *apiServer) handleStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries := s.daemon.monitor.Table().All()
	statuses := make([]api.ConnectionStatus, 0, len(entries))
	for _, entry := range entries {
		statuses = append(statuses, api.FromEntry(entry))
	}
	s.writeJSON(w, http.StatusOK, api.StatusListResponse{Statuses: statuses})
}

func (s *apiServer) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	totals, err := s.daemon.store.Statistics(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTotals(totals, s.daemon.collector.Snapshot()))
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromJobs(s.daemon.scheduler.Jobs())})
	case http.MethodPost:
		s.registerJob(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) registerJob(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	interval := time.Duration(req.IntervalMinutes) * time.Minute

	var (
		job scheduler.Job
		err error
	)
	switch req.Kind {
	case string(scheduler.KindBulk):
		filter := catalog.Filter{
			Country: s.daemon.catalog.NormalizeCountry(req.Country),
			Max:     req.MaxStations,
		}
		stagger := time.Duration(req.StaggerSeconds) * time.Second
		job, err = s.daemon.scheduler.RegisterBulk(r.Context(), filter, duration, interval, req.MaxConcurrent, stagger)
	case string(scheduler.KindSingle), "":
		country := s.daemon.catalog.NormalizeCountry(req.Country)
		station, ok := s.daemon.catalog.Find(country, req.StationName)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("station not found: %s", req.StationName))
			return
		}
		job, err = s.daemon.scheduler.RegisterSingle(r.Context(), station, duration, interval)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown job kind: %s", req.Kind))
		return
	}

	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, scheduler.ErrIntervalTooShort) &&
			!errors.Is(err, scheduler.ErrInvalidDuration) &&
			!errors.Is(err, scheduler.ErrMissingStation) &&
			!errors.Is(err, scheduler.ErrNoMatchingStation) {
			status = http.StatusInternalServerError
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.RegisterJobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		job, ok := s.daemon.scheduler.Get(id)
		if !ok {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.RegisterJobResponse{Job: api.FromJob(job)})
	case http.MethodDelete:
		if err := s.daemon.scheduler.Cancel(r.Context(), id); err != nil {
			if errors.Is(err, scheduler.ErrJobNotFound) {
				s.writeError(w, http.StatusNotFound, err.Error())
			} else {
				s.writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"cancelled": id})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.daemon.TriggerManual(req.Country, req.StationName, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, ErrStationNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.RecordResponse{
		Station:    api.FromStation(task.Station),
		OutputPath: task.OutputPath,
	})
}

func (s *apiServer) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.BulkTestRequest
	if r.Body != nil {
		// an empty body tests the whole catalog
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	results := s.daemon.TestAllStations(r.Context(), req.Country, req.MaxStations)
	s.writeJSON(w, http.StatusOK, api.FromBulkResults(results))
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="recordings.csv"`)
	if err := s.daemon.store.ExportCSV(r.Context(), w); err != nil {
		s.logger.Error("csv export failed", logging.Error(err))
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
