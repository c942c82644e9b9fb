// Package audit implements async event dispatching for state transitions.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, Redis stream,
//     NATS subject, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: audit record with timestamp, transition ID, revision, kind and
//     outcome.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit. The container does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on transition semantics.
//   - Import authstate or any sibling internal package.
//   - Perform network I/O beyond what a Sink does.
package audit
