// Package project persists whole projects to disk and restores them.
//
// A project is the set of values held by the settings stores. Save gathers
// every field into a snapshot and writes it to
// <projects dir>/<name>/project_state.json; Load decodes that file and pushes
// each present value back into its field store. Context tracks which
// project directory is active. Store methods never return errors: failures
// are logged and reported as false, since persistence runs as background
// maintenance.
package project
