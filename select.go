package authstate

import (
	"context"
	"sync"
)

// Select applies fn to a copy of the current session.
func Select[T any](c *Container, fn func(Session) T) T {
	return fn(c.GetState())
}

// Watch subscribes onChange to the value fn derives from the session. The
// starting value is read after the listener is registered, so no committed
// transition falls between the two; a transition that races registration
// becomes the starting value. Afterwards onChange runs only for committed
// transitions that change the value, so a repeated clear or a re-establish
// with the same identity is filtered out.
func Watch[T comparable](c *Container, fn func(Session) T, onChange func(ctx context.Context, v T)) Unsubscribe {
	var (
		mu     sync.Mutex
		last   T
		seeded bool
	)

	unsubscribe := c.Subscribe(func(ctx context.Context, s Session) {
		v := fn(s)

		mu.Lock()
		changed := seeded && v != last
		last = v
		seeded = true
		mu.Unlock()

		if changed {
			onChange(ctx, v)
		}
	})

	initial := fn(c.GetState())
	mu.Lock()
	if !seeded {
		last = initial
		seeded = true
	}
	mu.Unlock()

	return unsubscribe
}

// IsAuthenticated is a selector for [Watch] and [Select].
func IsAuthenticated(s Session) bool {
	return s.Authenticated
}

// UserID is a selector returning the identity ID or "".
func UserID(s Session) string {
	return s.UserID()
}
