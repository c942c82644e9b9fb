// Package session defines the authentication session value, the closed set of
// transition requests, and the pure transition function that maps one to the
// next.
//
// # Binary encoding
//
// [Encode] and [Decode] provide a compact, versioned binary form used when a
// committed snapshot is shipped to an external audit sink. The first byte is
// the schema version; strings are uvarint length-prefixed.
//
// # Architecture boundaries
//
// This package owns the [Session] model and [Apply]. It does NOT hold state,
// notify listeners, or serialize access. Those responsibilities belong to the
// container in the root package.
//
// # What this package must NOT do
//
//   - Import authstate or any sibling package (no upward imports).
//   - Keep package-level mutable state.
//   - Return a session that violates the Authenticated/Identity invariant.
package session
