// Package fieldstore implements the field store adapter contract: a uniform
// asynchronous get/set over one scalar or JSON-blob field.
//
// Field[T] is the contract the project store and the reconciler depend on.
// Values live in a Backend, a namespaced string key-value store; MemoryBackend
// serves tests and SQLiteBackend persists to the shared storyreel database.
// Scalar fields convert between T and the backend's string representation and
// fall back to a default when the key has never been written. Group commits
// several keys of one store in a single backend transaction.
//
// A Set is durable before it returns. Reads reflect the latest committed
// write; there is no caching layer.
package fieldstore
