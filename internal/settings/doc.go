// Package settings assembles the per-domain field stores of a project.
//
// Each domain (voice, narration, reference image, scenes, progress, project,
// generation, output) exposes typed fieldstore fields initialised from the
// snapshot default table. Stores also keeps a registry keyed by
// "store.key" so callers can address any field by name.
package settings
