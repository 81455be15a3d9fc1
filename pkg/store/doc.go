// Package store is the scoped key-value store shared by the components under
// one provider.
//
// A Store holds an immutable Snapshot of its entries. Every change replaces
// the Snapshot with a new one and never mutates the previous value, so a
// reactive State holding the Snapshot notifies its subscribers exactly once
// per logical change. Writes whose value is Identical to the current entry
// are no-ops: no backend write, no replacement, no notification.
//
// Each operation optionally takes a persist.Storage. Reads fall through to it
// on a miss; writes go through it first. Writes that change one of the two
// conventional handles (persist.Local, persist.Session) are also published on
// the broadcast bus so accessors in other scopes can follow them.
package store
