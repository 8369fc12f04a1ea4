// Package database opens the SQLite file that backs field values and the
// local job ledger.
//
// Open applies connection pragmas and the embedded migrations in
// migrations/*.sql, recording each applied version in schema_migrations.
// Migrations are append-only: add a new numbered file rather than editing an
// existing one.
package database
