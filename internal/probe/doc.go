// Package probe issues liveness checks against stream endpoints.
//
// A probe is a HEAD request with a strict deadline; every failure mode (DNS,
// connect, TLS, timeout, non-200) collapses into Reachable=false so callers
// never branch on error values. The prober reuses one tuned HTTP transport
// to avoid socket exhaustion when checking large station sets.
package probe
