// Package logging assembles the structured slog loggers used across the
// exporter.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes standardized field keys so every component tags log lines with the
// same run, archive, and entry attributes. A no-op logger is provided for
// tests and wiring code that cannot fail.
//
// The core never configures process-global logging; callers build a logger
// here and inject it per run.
package logging
