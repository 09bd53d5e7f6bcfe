package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aircheck/internal/api"
)

func fakeDaemonServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.DaemonStatus{
			Running:      true,
			PID:          4242,
			StartedAt:    time.Now(),
			StationCount: 12,
			CountryCount: 3,
			ActiveJobs:   1,
			DatabasePath: "/var/lib/aircheck/aircheck.db",
			LockFilePath: "/var/lib/aircheck/aircheckd.lock",
		})
	})
	mux.HandleFunc("/api/stations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.StationListResponse{Stations: []api.Station{
			{Name: "Radio Hala", Country: "Jordan", City: "Amman", Bitrate: 128, URL: "http://example.net/hala"},
			{Name: "Nile FM", Country: "Egypt", URL: "http://example.net/nile"},
		}})
	})
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(api.JobListResponse{Jobs: []api.Job{
				{ID: "job-1", Kind: "single", StationName: "Radio Hala", DurationSeconds: 30, IntervalMinutes: 5, State: "active", CreatedAt: time.Now()},
			}})
		case http.MethodPost:
			var req api.RegisterJobRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DurationSeconds <= 0 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: "recording duration must be positive"})
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(api.RegisterJobResponse{Job: api.Job{ID: "job-new", Kind: req.Kind, State: "active"}})
		}
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/gone") {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "scheduled job not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"cancelled": "job-1"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCommand(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	addr := strings.TrimPrefix(server.URL, "http://")
	cmd.SetArgs(append(args, "--addr", addr))
	err := cmd.Execute()
	return buf.String(), err
}

func TestStatusCommand(t *testing.T) {
	server := fakeDaemonServer(t)
	out, err := runCommand(t, server, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "4242") || !strings.Contains(out, "12 (3 countries)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStationsCommand(t *testing.T) {
	server := fakeDaemonServer(t)
	out, err := runCommand(t, server, "stations")
	if err != nil {
		t.Fatalf("stations: %v", err)
	}
	if !strings.Contains(out, "Radio Hala") || !strings.Contains(out, "2 stations") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestJobsListCommand(t *testing.T) {
	server := fakeDaemonServer(t)
	out, err := runCommand(t, server, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	if !strings.Contains(out, "job-1") || !strings.Contains(out, "every 5m") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestJobsAddCommand(t *testing.T) {
	server := fakeDaemonServer(t)
	out, err := runCommand(t, server, "jobs", "add", "--station", "Radio Hala", "--duration", "30", "--interval", "5")
	if err != nil {
		t.Fatalf("jobs add: %v", err)
	}
	if !strings.Contains(out, "Registered job job-new") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestJobsAddRejectedByDaemon(t *testing.T) {
	server := fakeDaemonServer(t)
	_, err := runCommand(t, server, "jobs", "add", "--station", "Radio Hala", "--duration", "0")
	if err == nil || !strings.Contains(err.Error(), "duration must be positive") {
		t.Fatalf("err = %v, want the daemon's validation message", err)
	}
}

func TestJobsCancelNotFound(t *testing.T) {
	server := fakeDaemonServer(t)
	_, err := runCommand(t, server, "jobs", "cancel", "gone")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not-found error", err)
	}
}

func TestDaemonUnreachable(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"status", "--addr", "127.0.0.1:1"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "is aircheckd running") {
		t.Fatalf("err = %v, want connection hint", err)
	}
}
