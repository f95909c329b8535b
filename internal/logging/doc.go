// Package logging assembles the structured slog loggers used across the
// tool suite.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers that tag log lines with the open
// document and a per-invocation correlation ID. Prefer these constructors
// over hand-rolled slog setup so every component emits data with the same
// shape.
package logging
