// Package logging assembles structured slog loggers and formatting helpers used
// across storyreel packages.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so store and reconciler code can tag log
// lines with the active project and lifecycle run identifiers. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system. Warnings should carry
// an event type, an error hint, and an impact; WarnWithContext fills in
// defaults when a caller omits them.
package logging
