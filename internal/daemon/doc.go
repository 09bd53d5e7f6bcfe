// Package daemon ties the orchestrator together: it loads the station
// catalog, runs the connection monitor and the job scheduler, enforces
// single-instance execution through a lock file, and serves the HTTP API the
// CLI talks to.
package daemon
