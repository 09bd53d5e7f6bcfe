// Package logging assembles the structured slog loggers shared across
// aircheck services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so background loops can tag log
// lines with component names and job identifiers consistently. A no-op
// logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
