// Package store provides an observable state container with a validated
// asynchronous commit protocol.
//
// A Store holds a snapshot of named scalar fields and mediates every read
// and write. The presentation layer reads current state with Get or
// Snapshot, subscribes for change notification, and mutates state through
// two paths:
//
//   - SetTrusted: a synchronous write for inputs already known safe, such
//     as a slider drag or a toggle. It always succeeds and always fans out
//     one notification.
//   - Commit: an asynchronous validated write for fields that require both
//     validation and an external side effect such as persistence. All
//     candidate fields are validated synchronously up front; only valid
//     input reaches the writer; only a successful write swaps state and
//     notifies.
//
// # Snapshots
//
// State reads are immutable-at-read: a Snapshot handed to an observer is
// never mutated in place, and Get returns identical results between
// mutations. Each externally visible change produces a new snapshot with a
// higher version.
//
// # Concurrency
//
// A single logical owner (typically a UI event loop) is the intended
// driver, but every method is safe for concurrent use. Only Commit
// suspends, at the writer boundary. At most one commit is in flight per
// store; concurrent attempts fail fast with ErrBusy. Trusted writes are
// never blocked by a pending commit; when both target the same field, the
// last writer by completion order wins.
//
// # Observation
//
// Observers are invoked in subscription order, once per change, against a
// snapshot of the subscriber list taken when the cycle starts. An observer
// that panics does not stop the cycle; failures are batched and returned
// to the caller that triggered the change. An observer that mutates the
// store from its own callback is deferred to a follow-up cycle, never
// re-entering the active loop. See the observe package.
//
// # Construction
//
// Stores use a NewX constructor with functional options:
//
//	s := store.New(map[string]store.Value{
//	    "username": store.StringValue("user123"),
//	    "volume":   store.IntValue(40),
//	}, store.WithValidator(rules), store.WithWriter(w))
//
// The schema package builds stores declaratively from YAML.
package store
