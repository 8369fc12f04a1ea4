// Package snapshot defines the persisted project state aggregate and its
// codec.
//
// A Snapshot is a flat record of every project field: voice configuration,
// narration text and derived audio paths, reference image metadata, the
// per-scene link list, progress counters, the active project directory, the
// last generation run, and output settings. Every field is a pointer; nil
// means the value was never produced (or the file predates the field) and is
// never an error.
//
// # Encoding
//
// Encode writes indented JSON with stable camelCase names. Every field is
// written, including nil ones as null, so readers can tell an empty value from
// a field that an older writer did not know about. Decode ignores unknown
// fields and reports malformed input as a *DecodeError matching ErrMalformed.
//
// # Nested lists
//
// Scene links and reference images travel inside the Snapshot as opaque JSON
// text (SceneLinksJSON, ReferenceImagesJSON). DecodeSceneList parses the scene
// blob while remembering each entry's original bytes, so rewriting one scene
// leaves the encoding of its siblings untouched.
//
// # Defaults
//
// Defaults returns the explicit default table: a fully populated Snapshot
// holding the value each field store starts with. WithDefaults fills the nil
// fields of a decoded Snapshot from that table for display.
package snapshot
