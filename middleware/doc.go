// Package middleware exposes an authstate container over HTTP.
//
//   - [Guard] admits requests only while the session is Identified.
//   - [LoginHandler] establishes the session from a bearer identity token.
//     [WithFailureThrottle] limits rejected tokens per client address.
//   - [LogoutHandler] clears the session.
//   - [StateHandler] serves the session as JSON.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into container calls. Token
// verification and transition rules stay in the container.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly.
//   - Mutate the session except through Dispatch.
package middleware
