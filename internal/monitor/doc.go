// Package monitor tracks the reachability of station endpoints.
//
// A background loop probes a rotating window of the catalog each cycle so the
// whole station set gets covered over time without hammering any host. Probe
// outcomes land in an in-memory StatusTable, which is the authoritative view;
// results are also written through to the store so the last known state
// survives a restart. Stations never probed report as untested rather than
// offline.
package monitor
