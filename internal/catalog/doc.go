// Package catalog loads the radio station catalog from a radio-browser JSON
// dump and exposes read-only lookups by country and city.
//
// The catalog is immutable once loaded; orchestration code treats stations as
// value types and never writes back. Filtering for bulk jobs (country filter
// plus a station cap) lives here so the scheduler and API share one
// selection semantic.
package catalog
