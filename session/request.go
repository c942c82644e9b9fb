package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransitionRequest is returned when an establish request carries a
	// missing or malformed identity.
	ErrInvalidTransitionRequest = errors.New("invalid transition request")
	// ErrUnknownTransitionKind is returned for request tags other than
	// "establish" and "clear".
	ErrUnknownTransitionKind = errors.New("unknown transition kind")
)

// Kind tags a transition request.
type Kind string

const (
	// KindEstablish attaches an identity.
	KindEstablish Kind = "establish"
	// KindClear drops the identity.
	KindClear Kind = "clear"
)

// Request is a transition request. The set of implementations is closed:
// [Establish] and [Clear].
type Request interface {
	Kind() Kind
	transition()
}

// Establish requests an Identified session with Detail as its identity.
// A nil Detail is rejected.
type Establish struct {
	Detail *Identity
}

// Kind implements [Request].
func (Establish) Kind() Kind { return KindEstablish }

func (Establish) transition() {}

// Clear requests an Anonymous session.
type Clear struct{}

// Kind implements [Request].
func (Clear) Kind() Kind { return KindClear }

func (Clear) transition() {}

// EstablishIdentity builds an [Establish] request holding a copy of id.
func EstablishIdentity(id Identity) Establish {
	return Establish{Detail: &id}
}

// Envelope is the tagged wire form of a request as it appears in JSON or YAML
// scripts: {"kind": "establish", "detail": {...}}.
type Envelope struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Detail *Identity `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Request converts the envelope into a typed request. Tags are matched
// case-insensitively after trimming. A clear envelope must not carry detail.
func (e Envelope) Request() (Request, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(e.Kind))) {
	case KindEstablish:
		if e.Detail == nil {
			return nil, fmt.Errorf("%w: establish requires detail", ErrInvalidTransitionRequest)
		}
		return EstablishIdentity(*e.Detail), nil
	case KindClear:
		if e.Detail != nil {
			return nil, fmt.Errorf("%w: clear takes no detail", ErrInvalidTransitionRequest)
		}
		return Clear{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransitionKind, e.Kind)
	}
}

// EnvelopeOf returns the wire form of req.
func EnvelopeOf(req Request) (Envelope, error) {
	switch r := req.(type) {
	case Establish:
		env := Envelope{Kind: string(KindEstablish)}
		if r.Detail != nil {
			d := *r.Detail
			env.Detail = &d
		}
		return env, nil
	case Clear:
		return Envelope{Kind: string(KindClear)}, nil
	default:
		return Envelope{}, ErrUnknownTransitionKind
	}
}
