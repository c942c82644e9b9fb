// Package authstate provides an in-memory authentication state container: a
// single [Session] that changes only through [Container.Dispatch] and
// announces every committed change to its subscribers.
//
// A session is either Anonymous or Identified. Two requests move it between
// those phases: [Establish] attaches an identity and [Clear] drops it. The
// transition itself is the pure function [session.Apply]; the container adds
// serialization, notification, metrics, observability and audit around it.
//
// Containers are explicit values built with [New] and [Builder.Build] and
// passed to whoever needs them. All methods are safe for concurrent use.
//
// # Architecture boundaries
//
// authstate is the public surface. It exposes [Container], [Builder],
// [Config] and aliases of the session value types. Audit dispatch lives
// under internal/ and is never exported directly.
//
// # What this package must NOT do
//
//   - Keep a package-level container or any other global mutable state.
//   - Let a listener observe a half-applied transition.
//   - Deliver a notification for a rejected request.
//
// # Reentrancy
//
// A Dispatch that arrives while the container is notifying listeners fails
// with [ErrReentrantDispatch] instead of reordering notifications or waiting
// on itself. Listener contexts carry a marker so chains through other
// containers are caught as well. Because the check cannot tell a listener
// from an unrelated goroutine, concurrent dispatchers may also see the error
// during a notification pass and can retry.
package authstate
