package session

import (
	"fmt"
	"strings"
)

// Phase is the coarse state of a [Session]: Anonymous or Identified.
type Phase uint8

const (
	// Anonymous means no identity is attached.
	Anonymous Phase = iota
	// Identified means an identity is attached.
	Identified
)

func (p Phase) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case Identified:
		return "identified"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Identity describes who an authenticated session belongs to.
type Identity struct {
	ID             string `json:"id" yaml:"id"`
	DisplayName    string `json:"displayName" yaml:"displayName"`
	ContactAddress string `json:"contactAddress,omitempty" yaml:"contactAddress,omitempty"`
}

// Validate reports whether the identity can be attached to a session.
// ID and DisplayName must be non-blank; ContactAddress is free-form.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: identity id is empty", ErrInvalidTransitionRequest)
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		return fmt.Errorf("%w: identity display name is empty", ErrInvalidTransitionRequest)
	}
	return nil
}

// Session is the authentication state tracked by a container.
//
// Identity is non-nil if and only if Authenticated is true. Values produced by
// [Apply] always satisfy that invariant; [Session.Valid] checks it for values
// built by hand or decoded from the wire.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity"`
}

// Initial returns the anonymous session every container starts with.
func Initial() Session {
	return Session{}
}

// Phase reports whether the session is Anonymous or Identified.
func (s Session) Phase() Phase {
	if s.Authenticated {
		return Identified
	}
	return Anonymous
}

// Valid reports whether the Authenticated/Identity invariant holds.
func (s Session) Valid() bool {
	return s.Authenticated == (s.Identity != nil)
}

// Clone returns a deep copy so callers cannot reach the container's value.
func (s Session) Clone() Session {
	if s.Identity == nil {
		return Session{Authenticated: s.Authenticated}
	}
	id := *s.Identity
	return Session{Authenticated: s.Authenticated, Identity: &id}
}

// Equal compares two sessions by value.
func (s Session) Equal(other Session) bool {
	if s.Authenticated != other.Authenticated {
		return false
	}
	if s.Identity == nil || other.Identity == nil {
		return s.Identity == nil && other.Identity == nil
	}
	return *s.Identity == *other.Identity
}

// UserID returns the identity ID, or "" when anonymous.
func (s Session) UserID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}
