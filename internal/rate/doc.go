// Package rate counts failed attempts per key in fixed Redis windows.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. A key is rejected once its
// counter reaches MaxFailures and stays rejected until the key expires or
// [Limiter.Reset] runs.
//
// # What this package must NOT do
//
//   - Decide what a key means (client address, identity). Callers choose.
//   - Be imported outside the authstate module.
package rate
