// Package store persists capture history, scheduled jobs, and connection
// status in SQLite.
//
// The database is a durable log: the orchestrator writes results and job
// records for restart visibility and reporting, but never reads persisted
// state back to make scheduling decisions. In-memory state is authoritative
// while the process runs, so persistence failures are logged by callers and
// never block capture work.
//
// Schema changes bump schemaVersion in schema.go; the store refuses to open
// a database with a mismatched version rather than guessing at migrations.
package store
