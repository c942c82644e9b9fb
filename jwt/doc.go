// Package jwt issues and verifies signed identity tokens. A verified token
// yields a [session.Identity] that a container can establish.
package jwt
