// Package jobs answers "what is the background scheduler doing for this tag".
//
// StatusQuery is the read contract the resume reconciler depends on. The
// package ships three implementations: Static for tests, Ledger over the
// shared SQLite database, and Asynq over a Redis-backed asynq deployment.
package jobs
