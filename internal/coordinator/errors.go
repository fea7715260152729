// Package coordinator defines the error taxonomy shared by the registry,
// store, and dispatch logic.
package coordinator

import "errors"

// Errors reported by coordinator components. Every condition here is
// recoverable and local to the offending connection; none of them is ever
// fatal to the coordinator or to other connections.
var (
	// ErrDuplicateConnection is returned when a connection identifier is
	// registered twice. Identifiers are minted by the transport layer and
	// assumed unique, so this indicates a transport bug.
	ErrDuplicateConnection = errors.New("coordinator: connection already registered")

	// ErrUnknownSession is returned when an operation references a
	// connection that is not in the session registry.
	ErrUnknownSession = errors.New("coordinator: unknown session")

	// ErrUnknownMessage is returned when a read receipt or reaction
	// references a message identifier that no room log contains.
	ErrUnknownMessage = errors.New("coordinator: unknown message")

	// ErrInvalidTransition is returned when a command arrives before the
	// connection has identified itself.
	ErrInvalidTransition = errors.New("coordinator: command not valid in current state")

	// ErrEmptySend is returned when a message carries neither a body nor
	// an attachment.
	ErrEmptySend = errors.New("coordinator: message has no body or attachment")
)
