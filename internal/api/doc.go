// Package api defines the JSON payloads shared by the daemon's HTTP API and
// the CLI client, plus converters from internal domain types. Keeping the
// wire shapes here means the CLI never imports scheduler or monitor
// internals.
package api
