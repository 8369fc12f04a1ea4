// Package preflight provides readiness checks for the filesystem paths and
// the job backend that storyreel depends on.
//
// The CLI "storyreel status" command runs RunAll and renders each Result.
package preflight
