package authstate

import (
	"errors"

	"github.com/MrEthical07/authstate/session"
)

var (
	// ErrInvalidTransitionRequest is returned by Dispatch for an establish
	// request whose identity is missing or malformed.
	ErrInvalidTransitionRequest = session.ErrInvalidTransitionRequest
	// ErrUnknownTransitionKind is returned by Dispatch for a nil request or an
	// unrecognized envelope tag.
	ErrUnknownTransitionKind = session.ErrUnknownTransitionKind
	// ErrReentrantDispatch is returned when a listener dispatches with the
	// notification context it was handed.
	ErrReentrantDispatch = errors.New("reentrant dispatch")
	// ErrContainerClosed is returned by Dispatch after Close.
	ErrContainerClosed = errors.New("container closed")
	// ErrContainerNotReady is returned when methods are called on a nil container.
	ErrContainerNotReady = errors.New("container not initialized")
	// ErrTokenEstablishDisabled is returned by token operations when no token
	// manager is configured.
	ErrTokenEstablishDisabled = errors.New("token establishment disabled")
	// ErrTokenInvalid is returned when an identity token fails verification.
	ErrTokenInvalid = errors.New("invalid identity token")
)
