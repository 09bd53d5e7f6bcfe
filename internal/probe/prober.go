package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Connection pooling limits to prevent resource exhaustion when probing many
// endpoints in quick succession.
const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 4
	maxConnsPerHost     = 4
	idleConnTimeout     = 60 * time.Second
)

// Result is the outcome of one liveness check.
type Result struct {
	// Reachable is true when the endpoint answered 200 within the deadline.
	Reachable bool
	// Latency is the time the check took. A timed-out probe reports the
	// full timeout as its latency.
	Latency time.Duration
}

// Prober checks endpoint liveness over HTTP.
type Prober struct {
	client *http.Client
}

// New constructs a Prober with a shared pooled transport. Timeouts are
// applied per probe via context, not on the client.
func New() *Prober {
	return &Prober{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				MaxConnsPerHost:     maxConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
	}
}

// Probe checks one endpoint URL. It never returns an error: any failure is
// reported as Reachable=false. The timeout is honored strictly.
func (p *Prober) Probe(ctx context.Context, url string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Result{Reachable: false, Latency: time.Since(start)}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		latency := time.Since(start)
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			latency = timeout
		}
		return Result{Reachable: false, Latency: latency}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return Result{
		Reachable: resp.StatusCode == http.StatusOK,
		Latency:   time.Since(start),
	}
}

// Close releases idle connections held by the prober's transport.
func (p *Prober) Close() {
	if p == nil || p.client == nil {
		return
	}
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
