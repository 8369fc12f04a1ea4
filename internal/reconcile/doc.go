// Package reconcile clears stale "processing" flags after the host resumes.
//
// Two sub-protocols run on every resume. The audio protocol checks the
// narration processing flag against jobs tagged with the audio tag; the
// scene protocol checks per-scene busy flags against jobs tagged with the
// video tag. A flag is cleared only when the job query succeeds and reports
// no enqueued or running job. Any error turns that sub-protocol into a
// no-op for this resume.
package reconcile
