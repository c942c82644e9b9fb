package authstate

import (
	"context"

	"github.com/MrEthical07/authstate/session"
)

// Session is the authentication state held by a [Container].
type Session = session.Session

// Identity describes who an authenticated session belongs to.
type Identity = session.Identity

// Phase is Anonymous or Identified.
type Phase = session.Phase

const (
	// Anonymous is the phase of a session without identity.
	Anonymous = session.Anonymous
	// Identified is the phase of a session with identity.
	Identified = session.Identified
)

// Request is a transition request accepted by [Container.Dispatch].
type Request = session.Request

// Establish attaches an identity. See [session.Establish].
type Establish = session.Establish

// Clear drops the identity. See [session.Clear].
type Clear = session.Clear

// Envelope is the tagged JSON/YAML form of a request.
type Envelope = session.Envelope

// EstablishIdentity builds an [Establish] request holding a copy of id.
func EstablishIdentity(id Identity) Establish {
	return session.EstablishIdentity(id)
}

// Listener is called after every committed transition with a private copy
// of the new session. ctx marks the call as a notification.
//
// Listeners run while the container holds its dispatch lock. They may read
// state, subscribe and unsubscribe. Any Dispatch on the same container from
// inside a listener fails with [ErrReentrantDispatch], whatever context it
// carries. A panicking listener stops the pass, but the transition stays
// committed and recorded.
type Listener func(ctx context.Context, s Session)

// Unsubscribe removes a listener. It is idempotent.
type Unsubscribe func()
