package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"aircheck/internal/api"
	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/daemon"
	"aircheck/internal/probe"
	"aircheck/internal/testsupport"
)

type stubRunner struct {
	mu    sync.Mutex
	calls int
}

func (s *stubRunner) Capture(ctx context.Context, sourceURL string, duration time.Duration, outputPath string) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return os.WriteFile(outputPath, []byte("audio"), 0o644)
}

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, url string, timeout time.Duration) probe.Result {
	return probe.Result{Reachable: !strings.Contains(url, "down"), Latency: 5 * time.Millisecond}
}

func fixtureStations() map[string][]catalog.Station {
	return map[string][]catalog.Station{
		"Jordan": {
			{Name: "Radio Hala", URL: "http://example.net/hala"},
			{Name: "Yarmouk FM", URL: "http://example.net/down/yarmouk"},
		},
		"Egypt": {
			{Name: "Nile FM", URL: "http://example.net/nile"},
		},
	}
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *config.Config, *stubRunner) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	cat := testsupport.WriteCatalog(t, cfg, fixtureStations())

	runner := &stubRunner{}
	d, err := daemon.New(cfg, st, nil,
		daemon.WithCatalog(cat),
		daemon.WithRunner(runner),
		daemon.WithProber(stubProber{}))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, cfg, runner
}

func startDaemon(t *testing.T, d *daemon.Daemon) string {
	t.Helper()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)
	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("daemon has no API address")
	}
	return "http://" + addr
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	first, cfg, _ := newTestDaemon(t)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), nil,
		daemon.WithCatalog(testsupport.WriteCatalog(t, cfg, fixtureStations())),
		daemon.WithRunner(&stubRunner{}),
		daemon.WithProber(stubProber{}))
	if err != nil {
		t.Fatalf("daemon.New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second Start should fail while the lock is held")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("Start after lock release: %v", err)
	}
	second.Stop()
}

func TestStatusEndpoint(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	var status api.DaemonStatus
	getJSON(t, base+"/api/status", &status)

	if !status.Running {
		t.Fatal("Running = false")
	}
	if status.StationCount != 3 || status.CountryCount != 2 {
		t.Fatalf("catalog counts = %d stations, %d countries", status.StationCount, status.CountryCount)
	}
	if status.DatabasePath == "" || status.LockFilePath == "" {
		t.Fatalf("paths missing: %+v", status)
	}
}

func TestStationsEndpointFiltersByCountry(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	var all api.StationListResponse
	getJSON(t, base+"/api/stations", &all)
	if len(all.Stations) != 3 {
		t.Fatalf("all stations = %d, want 3", len(all.Stations))
	}

	var jordan api.StationListResponse
	getJSON(t, base+"/api/stations?country=jordan", &jordan)
	if len(jordan.Stations) != 2 {
		t.Fatalf("jordan stations = %d, want 2 (country input normalized)", len(jordan.Stations))
	}
}

func TestJobLifecycleOverAPI(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp := postJSON(t, base+"/api/jobs", api.RegisterJobRequest{
		Kind:            "single",
		StationName:     "Radio Hala",
		Country:         "Jordan",
		DurationSeconds: 30,
		IntervalMinutes: 5,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register status = %d: %s", resp.StatusCode, body)
	}
	var created api.RegisterJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if created.Job.ID == "" || created.Job.State != "active" {
		t.Fatalf("created job = %+v", created.Job)
	}

	var list api.JobListResponse
	getJSON(t, base+"/api/jobs", &list)
	if len(list.Jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(list.Jobs))
	}

	req, err := http.NewRequest(http.MethodDelete, base+"/api/jobs/"+created.Job.ID, nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", del.StatusCode)
	}

	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE repeat: %v", err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat cancel status = %d, want 404", again.StatusCode)
	}
}

func TestRegisterJobValidation(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp := postJSON(t, base+"/api/jobs", api.RegisterJobRequest{
		Kind:            "bulk",
		Country:         "Jordan",
		DurationSeconds: 30,
		IntervalMinutes: 0,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("once bulk job status = %d, want created", resp.StatusCode)
	}

	bad := postJSON(t, base+"/api/jobs", api.RegisterJobRequest{
		Kind:            "single",
		StationName:     "Radio Hala",
		DurationSeconds: 0,
		IntervalMinutes: 5,
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid duration status = %d, want 400", bad.StatusCode)
	}
}

func TestManualRecordEndpoint(t *testing.T) {
	d, _, runner := newTestDaemon(t)
	base := startDaemon(t, d)

	resp := postJSON(t, base+"/api/record", api.RecordRequest{
		StationName:     "Nile FM",
		DurationSeconds: 1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("record status = %d: %s", resp.StatusCode, body)
	}
	var ack api.RecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode record response: %v", err)
	}
	if ack.OutputPath == "" || ack.Station.Name != "Nile FM" {
		t.Fatalf("ack = %+v", ack)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		runner.mu.Lock()
		calls := runner.calls
		runner.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("manual recording never reached the runner")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManualRecordUnknownStation(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp := postJSON(t, base+"/api/record", api.RecordRequest{
		StationName:     "No Such FM",
		DurationSeconds: 30,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestBulkTestEndpoint(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp := postJSON(t, base+"/api/test", api.BulkTestRequest{Country: "Jordan"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("test status = %d", resp.StatusCode)
	}
	var report api.BulkTestResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode test response: %v", err)
	}
	if report.Tested != 2 {
		t.Fatalf("tested = %d, want 2", report.Tested)
	}
	if report.Online != 1 {
		t.Fatalf("online = %d, want 1 (yarmouk url is down)", report.Online)
	}

	var statuses api.StatusListResponse
	getJSON(t, base+"/api/statuses", &statuses)
	if len(statuses.Statuses) < 2 {
		t.Fatalf("statuses = %d, want the tested stations in the table", len(statuses.Statuses))
	}
}

func TestExportEndpoint(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp, err := http.Get(base + "/api/export")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/csv" {
		t.Fatalf("content type = %q", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(body), "id,station_name") {
		t.Fatalf("unexpected csv header: %.60s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	base := startDaemon(t, d)

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("metrics output missing standard collectors")
	}
}

func TestHealthTableDefaultsUntestedBeforeStart(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	if entry := d.HealthTable().Get("Radio Hala"); string(entry.Status) != "untested" {
		t.Fatalf("status = %s, want untested before any probe", entry.Status)
	}
}
