// Package main hosts the storyreel CLI entrypoint and command graph.
//
// The Cobra command tree drives the project lifecycle from a terminal: it
// saves, loads, switches, and deletes projects, runs the resume reconciler,
// inspects individual field values, and records or enqueues background
// jobs. Configuration resolution, logging setup, and store wiring live in
// the command context so subcommands stay declarative.
package main
