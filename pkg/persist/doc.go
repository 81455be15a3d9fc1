// Package persist is the persistent storage adapter and its backends.
//
// A Storage is a synchronous string key-value store in the shape of browser
// web storage: GetItem, SetItem and RemoveItem. The package-level adapter
// functions (Get, Lookup, Set, Remove) layer JSON encoding and
// write suppression on top of any Storage:
//
//   - Get returns the decoded value, or the default when the backend is nil,
//     the key is absent, or the stored text is not valid JSON.
//   - Set encodes the value and writes only when the encoded text differs
//     from what is stored, reporting whether a write happened.
//   - Remove deletes only keys that exist, reporting whether it did.
//
// Two conventional handles, Local (durable) and Session, are registered
// process-wide. They are the only backends with a channel name (NameOf), and
// therefore the only ones whose writes are broadcast to other scopes.
//
// Backends:
//
//   - MemoryStorage: in-process map, the default for both handles.
//   - SQLStorage: database/sql table; OpenSQLite uses modernc.org/sqlite.
//   - FileStorage: one file per key in a directory, with an fsnotify watcher
//     that reports writes made by other processes.
//   - S3Storage: one object per key in an S3 bucket.
//
// Traced wraps any backend with OpenTelemetry spans.
package persist
