// Package lifecycle connects host lifecycle events to the project store and
// the resume reconciler.
//
// Host serialises every persistence operation (save, load, switch, create,
// delete) so at most one is in flight. Reconciliation runs outside that lock
// because it only touches in-progress flags. Every invocation carries a fresh
// run_id in its logging context.
package lifecycle
